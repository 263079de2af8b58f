package notifications

import (
	"context"
	"fmt"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Event is a customer-facing notification. Data carries event-specific
// strings already formatted for display (amounts, spot numbers, times).
type Event struct {
	Type          enums.NotificationEvent
	CustomerEmail string
	CustomerName  string
	Data          map[string]string
}

// Dispatcher delivers events to customers. Dispatch must not block the
// caller and must never fail a business operation: delivery errors are
// logged and dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

func subjectFor(event Event) string {
	switch event.Type {
	case enums.NotificationBookingCreated:
		return "Your parking booking is confirmed"
	case enums.NotificationBookingCancelled:
		return "Your parking booking was cancelled"
	case enums.NotificationSessionStarted:
		return "Your parking session has started"
	case enums.NotificationSessionEnded:
		return "Your parking session receipt"
	case enums.NotificationPaymentCompleted:
		return "Payment received"
	default:
		return "Parkly update"
	}
}

func bodyFor(event Event) string {
	greeting := "Hi"
	if event.CustomerName != "" {
		greeting = fmt.Sprintf("Hi %s", event.CustomerName)
	}

	switch event.Type {
	case enums.NotificationBookingCreated:
		return fmt.Sprintf("%s,\n\nYour booking for spot %s from %s to %s is in. Estimated cost %s was charged to your balance.\n",
			greeting, event.Data["spot_number"], event.Data["start_time"], event.Data["end_time"], event.Data["estimated_cost"])
	case enums.NotificationBookingCancelled:
		return fmt.Sprintf("%s,\n\nYour booking for spot %s was cancelled and %s was refunded to your balance.\n",
			greeting, event.Data["spot_number"], event.Data["refund_amount"])
	case enums.NotificationSessionStarted:
		return fmt.Sprintf("%s,\n\nYour parking session at spot %s started at %s.\n",
			greeting, event.Data["spot_number"], event.Data["entry_time"])
	case enums.NotificationSessionEnded:
		return fmt.Sprintf("%s,\n\nYour parking session at spot %s ended. Duration: %s minutes, total cost %s.\n",
			greeting, event.Data["spot_number"], event.Data["duration_minutes"], event.Data["total_cost"])
	case enums.NotificationPaymentCompleted:
		return fmt.Sprintf("%s,\n\nWe received your payment of %s.\n", greeting, event.Data["amount"])
	default:
		return fmt.Sprintf("%s,\n\nThere is an update on your Parkly account.\n", greeting)
	}
}
