package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/parklyapp/parkly-backend/pkg/config"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

const dispatchTimeout = 10 * time.Second

// EmailDispatcher delivers events over sendgrid. Sends run on their own
// goroutine with a detached context so a slow provider never holds a request.
type EmailDispatcher struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logg      *logger.Logger
}

// NewEmailDispatcher builds a sendgrid-backed dispatcher.
func NewEmailDispatcher(cfg config.NotifierConfig, logg *logger.Logger) (*EmailDispatcher, error) {
	if cfg.SendgridAPIKey == "" {
		return nil, fmt.Errorf("notifications: sendgrid api key is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("notifications: logger is required")
	}
	return &EmailDispatcher{
		client:    sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logg:      logg,
	}, nil
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, event Event) {
	if event.CustomerEmail == "" {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		from := mail.NewEmail(d.fromName, d.fromEmail)
		to := mail.NewEmail(event.CustomerName, event.CustomerEmail)
		body := bodyFor(event)
		message := mail.NewSingleEmail(from, subjectFor(event), to, body, "")

		logCtx := d.logg.WithFields(sendCtx, map[string]any{
			"event": event.Type.String(),
			"to":    event.CustomerEmail,
		})

		response, err := d.client.SendWithContext(sendCtx, message)
		if err != nil {
			d.logg.Error(logCtx, "notification send failed", err)
			return
		}
		if response.StatusCode >= 400 {
			d.logg.Error(logCtx, "notification send rejected",
				fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body))
			return
		}
		d.logg.Info(logCtx, "notification sent")
	}()
}
