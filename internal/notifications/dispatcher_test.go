package notifications

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/parklyapp/parkly-backend/pkg/enums"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

func TestSubjectFor_CoversAllEvents(t *testing.T) {
	events := []enums.NotificationEvent{
		enums.NotificationBookingCreated,
		enums.NotificationBookingCancelled,
		enums.NotificationSessionStarted,
		enums.NotificationSessionEnded,
		enums.NotificationPaymentCompleted,
	}
	seen := make(map[string]bool)
	for _, event := range events {
		subject := subjectFor(Event{Type: event})
		if subject == "" || subject == "Parkly update" {
			t.Fatalf("event %s fell through to the default subject", event)
		}
		if seen[subject] {
			t.Fatalf("duplicate subject %q", subject)
		}
		seen[subject] = true
	}
}

func TestBodyFor_InterpolatesEventData(t *testing.T) {
	body := bodyFor(Event{
		Type:         enums.NotificationSessionEnded,
		CustomerName: "Dana",
		Data: map[string]string{
			"spot_number":      "A-12",
			"duration_minutes": "90",
			"total_cost":       "200.00",
		},
	})
	for _, want := range []string{"Dana", "A-12", "90", "200.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestLogDispatcher_DoesNotPanicWithoutData(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	dispatcher := NewLogDispatcher(logg)
	dispatcher.Dispatch(context.Background(), Event{Type: enums.NotificationBookingCreated})
}
