package enums

// NotificationEvent names the lifecycle moments the dispatcher reacts to.
type NotificationEvent string

const (
	NotificationBookingCreated   NotificationEvent = "booking.created"
	NotificationBookingCancelled NotificationEvent = "booking.cancelled"
	NotificationSessionStarted   NotificationEvent = "session.started"
	NotificationSessionEnded     NotificationEvent = "session.ended"
	NotificationPaymentCompleted NotificationEvent = "payment.completed"
)

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}
