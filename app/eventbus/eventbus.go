// Package eventbus provides the message transport for reaction events.
package eventbus

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewInProcess creates the default in-process bus backed by watermill's
// gochannel Pub/Sub. Messages are delivered to subscribers on their own
// goroutines, matching the one-task-per-event scheduling model.
func NewInProcess(logger *slog.Logger) EventBus {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
}
