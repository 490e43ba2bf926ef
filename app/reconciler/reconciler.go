package reconciler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

// RoleMessageSource provides the current role message and bindings.
type RoleMessageSource interface {
	GetRoleMessage(ctx context.Context, partition string) (*models.RoleMessage, error)
	ListBindings(ctx context.Context, partition string) ([]models.UserRole, error)
}

// PointsSource provides the current points configuration.
type PointsSource interface {
	GetConfig(ctx context.Context, partition string) (*models.PointsConfig, error)
}

// RoleChanger applies a grant or revoke for a matched binding.
type RoleChanger interface {
	ApplyRoleChange(ctx context.Context, guildID models.GuildID, userID models.UserID, binding models.UserRole, grant bool) error
}

// PointsChanger applies a point delta to a message author.
type PointsChanger interface {
	ChangePoints(ctx context.Context, guildID models.GuildID, user models.UserRef, delta int) (*models.UserPoints, error)
}

// MessageResolver fetches the reacted-to message, to find its author.
type MessageResolver interface {
	SelfID() models.UserID
	FetchMessage(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error)
}

// Reconciler holds no state of its own; it reads the current records on
// every event, classifies, and dispatches. Multiple events reconcile
// concurrently with no ordering guarantees between them.
type Reconciler struct {
	roles    RoleMessageSource
	points   PointsSource
	mutator  RoleChanger
	ledger   PointsChanger
	resolver MessageResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New creates a reconciler.
func New(roles RoleMessageSource, points PointsSource, mutator RoleChanger, ledger PointsChanger, resolver MessageResolver, m *metrics.Metrics, tracer trace.Tracer, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		roles:    roles,
		points:   points,
		mutator:  mutator,
		ledger:   ledger,
		resolver: resolver,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
	}
}

// Reconcile processes one reaction event end to end. A returned error means
// the event was dropped; nobody awaits a reply to an asynchronous reaction,
// so the caller only logs.
func (r *Reconciler) Reconcile(ctx context.Context, ev models.ReactionEvent) (err error) {
	partition := ev.Partition()

	ctx, span := r.tracer.Start(ctx, "Reconciler.Reconcile", trace.WithAttributes(
		attribute.String("partition", partition),
		attribute.String("reaction_kind", string(ev.Kind)),
		attribute.String("emote", ev.Emote.Key()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	roleMsg, err := r.roles.GetRoleMessage(ctx, partition)
	if err != nil {
		return err
	}
	cfg, err := r.points.GetConfig(ctx, partition)
	if err != nil {
		return err
	}

	target := ClassifyTarget(ev, r.resolver.SelfID(), roleMsg, cfg)
	r.metrics.ReactionsClassified.WithLabelValues(target.String()).Inc()
	span.SetAttributes(attribute.String("target", target.String()))

	switch target {
	case TargetRoleMessage:
		return r.reconcileRole(ctx, ev)
	case TargetPoints:
		return r.reconcilePoints(ctx, ev)
	default:
		return nil
	}
}

func (r *Reconciler) reconcileRole(ctx context.Context, ev models.ReactionEvent) error {
	bindings, err := r.roles.ListBindings(ctx, ev.Partition())
	if err != nil {
		return err
	}

	binding := MatchBinding(bindings, ev.Emote)
	if binding == nil {
		// A reaction on the role message with an emote no role is bound to.
		r.logger.Debug("unbound emote on role message",
			"partition", ev.Partition(),
			"emote", ev.Emote.Key(),
		)
		return nil
	}

	return r.mutator.ApplyRoleChange(ctx, ev.GuildID, ev.UserID, *binding, ev.Kind == models.ReactionAdd)
}

func (r *Reconciler) reconcilePoints(ctx context.Context, ev models.ReactionEvent) error {
	msg, err := r.resolver.FetchMessage(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		return err
	}

	// Rating your own message is a no-op, as is rating the bot.
	if msg.Author.ID == ev.UserID || msg.Author.ID == r.resolver.SelfID() {
		return nil
	}

	_, err = r.ledger.ChangePoints(ctx, ev.GuildID, msg.Author, ev.Kind.Delta())
	return err
}
