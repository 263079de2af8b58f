package notifications

import (
	"context"

	"github.com/parklyapp/parkly-backend/pkg/logger"
)

// LogDispatcher writes events to the log instead of delivering them. Used in
// development and whenever no sendgrid key is configured.
type LogDispatcher struct {
	logg *logger.Logger
}

func NewLogDispatcher(logg *logger.Logger) *LogDispatcher {
	return &LogDispatcher{logg: logg}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event Event) {
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"event": event.Type.String(),
		"to":    event.CustomerEmail,
		"data":  event.Data,
	})
	d.logg.Info(logCtx, "notification dispatched")
}
