package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

// Mutator applies reaction-triggered role grants and revokes. Failures are
// logged and returned for the reconciler to drop; the reacting user gets no
// chat reply since nothing awaits one.
type Mutator struct {
	gateway   shared.DiscordGateway
	logger    *slog.Logger
	metrics   *metrics.Metrics
	dmLimiter *rate.Limiter
}

var _ RoleChanger = (*Mutator)(nil)

// NewMutator creates a role mutator. The DM limiter keeps notification
// bursts (a popular role message right after posting) inside Discord's good
// graces; a skipped DM is a degraded notification, not a failed mutation.
func NewMutator(gateway shared.DiscordGateway, m *metrics.Metrics, logger *slog.Logger) *Mutator {
	return &Mutator{
		gateway:   gateway,
		logger:    logger,
		metrics:   m,
		dmLimiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// ApplyRoleChange grants or revokes the bound guild role and notifies the
// affected member by DM on success.
func (m *Mutator) ApplyRoleChange(ctx context.Context, guildID models.GuildID, userID models.UserID, binding models.UserRole, grant bool) error {
	op := "revoke"
	if grant {
		op = "grant"
	}

	var err error
	if grant {
		err = m.gateway.AddRole(ctx, guildID, userID, binding.GuildRole.ID)
	} else {
		err = m.gateway.RemoveRole(ctx, guildID, userID, binding.GuildRole.ID)
	}
	if err != nil {
		m.metrics.RoleMutations.WithLabelValues(op, "error").Inc()
		switch {
		case errors.Is(err, models.ErrMemberNotFound):
			m.logger.Info("role change target left the guild",
				"guild", guildID,
				"user", userID,
				"role", binding.GuildRole.Name,
			)
		case errors.Is(err, models.ErrForbidden):
			m.logger.Warn("role change forbidden",
				"guild", guildID,
				"role", binding.GuildRole.Name,
				"error", err,
			)
		default:
			m.logger.Error("role change failed",
				"guild", guildID,
				"user", userID,
				"role", binding.GuildRole.Name,
				"error", err,
			)
		}
		return err
	}

	m.metrics.RoleMutations.WithLabelValues(op, "ok").Inc()
	m.logger.Info("role changed by reaction",
		"guild", guildID,
		"user", userID,
		"role", binding.GuildRole.Name,
		"grant", grant,
	)

	m.notify(ctx, userID, binding, grant)
	return nil
}

// notify sends the best-effort DM. Users with closed DMs are common; every
// failure here is swallowed.
func (m *Mutator) notify(ctx context.Context, userID models.UserID, binding models.UserRole, grant bool) {
	if !m.dmLimiter.Allow() {
		m.logger.Debug("role change DM skipped by rate limiter", "user", userID)
		return
	}

	content := fmt.Sprintf("The role %s was removed from you.", binding.GuildRole.Name)
	if grant {
		content = fmt.Sprintf("The role %s was added to you.", binding.GuildRole.Name)
	}

	if err := m.gateway.SendDM(ctx, userID, content); err != nil {
		m.metrics.DMsFailed.Inc()
		m.logger.Debug("role change DM failed", "user", userID, "error", err)
		return
	}
	m.metrics.DMsSent.Inc()
}
