package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/grammar-gang/grammar-bot/app/eventbus"
	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/reconciler"
)

// NewRouter builds the watermill router that feeds reaction events to the
// reconciler. Handler errors are logged and the message acked: a failed
// role or point mutation is dropped, never redelivered to a user who is not
// waiting for it.
func NewRouter(bus eventbus.EventBus, recon *reconciler.Reconciler, logger *slog.Logger) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	router.AddNoPublisherHandler(
		"reconcile_reaction_added",
		eventbus.TopicReactionAdded,
		bus,
		reactionHandler(recon, logger),
	)
	router.AddNoPublisherHandler(
		"reconcile_reaction_removed",
		eventbus.TopicReactionRemoved,
		bus,
		reactionHandler(recon, logger),
	)

	return router, nil
}

func reactionHandler(recon *reconciler.Reconciler, logger *slog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var ev models.ReactionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logger.Error("undecodable reaction event",
				"message_uuid", msg.UUID,
				"error", err,
			)
			return nil
		}

		ctx := context.Background()
		if msgCtx := msg.Context(); msgCtx != nil {
			ctx = msgCtx
		}

		if err := recon.Reconcile(ctx, ev); err != nil {
			logger.Error("reaction reconciliation failed",
				"kind", ev.Kind,
				"partition", ev.Partition(),
				"message_id", ev.MessageID,
				"error", err,
			)
		}
		return nil
	}
}
