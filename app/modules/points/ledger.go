package points

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

// Ledger performs the read-modify-write point mutations. The store offers no
// atomic increment, so the two writes per change (user total and guild
// aggregate) are plain full-record replacements; updates within a partition
// are serialized through a keyed mutex to close the lost-update window in
// process. Cross-process deployments need a single ledger owner per guild.
type Ledger struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
	keys    keyedMutex
}

var _ Service = (*Ledger)(nil)

// NewLedger creates a points ledger.
func NewLedger(repo Repository, m *metrics.Metrics, logger *slog.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger, metrics: m}
}

// SetPointsEmote creates or replaces the configured emote. An existing config
// keeps its aggregate total and active state; a fresh one starts active at
// zero.
func (l *Ledger) SetPointsEmote(ctx context.Context, guildID models.GuildID, emote models.EmoteRef, setBy models.UserRef) (*models.PointsConfig, error) {
	partition := models.PartitionFor(guildID)

	// Same lock as ChangePoints: this read-modify-write carries Total, so an
	// emote swap racing a point award would write back a stale aggregate.
	unlock := l.keys.lock(partition)
	defer unlock()

	cur, err := l.repo.GetConfig(ctx, partition)
	if err != nil {
		return nil, err
	}

	cfg := models.PointsConfig{Emote: emote, SetBy: setBy, Active: true}
	if cur != nil {
		cfg.Active = cur.Active
		cfg.Total = cur.Total
	}

	if err := l.repo.SaveConfig(ctx, partition, cfg); err != nil {
		return nil, err
	}

	l.logger.Info("points emote set",
		"partition", partition,
		"emote", emote.Key(),
		"set_by", setBy.ID,
	)
	return &cfg, nil
}

// GetPointsConfig returns the configuration, or ErrPointsNotConfigured when
// no emote has been set for the partition.
func (l *Ledger) GetPointsConfig(ctx context.Context, guildID models.GuildID) (*models.PointsConfig, error) {
	cfg, err := l.repo.GetConfig(ctx, models.PartitionFor(guildID))
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, models.ErrPointsNotConfigured
	}
	return cfg, nil
}

// GetUserPoints returns one member's point record.
func (l *Ledger) GetUserPoints(ctx context.Context, guildID models.GuildID, userID models.UserID) (*models.UserPoints, error) {
	return l.repo.GetUser(ctx, models.PartitionFor(guildID), userID)
}

// GetAllUserPoints returns every point record, sorted from most to fewest
// points for leaderboard rendering.
func (l *Ledger) GetAllUserPoints(ctx context.Context, guildID models.GuildID) ([]models.UserPoints, error) {
	users, err := l.repo.ListUsers(ctx, models.PartitionFor(guildID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Points > users[j].Points
	})
	return users, nil
}

// ChangePoints applies a signed delta to a user's total and to the guild
// aggregate. The user record is created on first use, seeded with the given
// snapshot; existing records get the snapshot refreshed. Both counters
// saturate at zero.
func (l *Ledger) ChangePoints(ctx context.Context, guildID models.GuildID, user models.UserRef, delta int) (*models.UserPoints, error) {
	partition := models.PartitionFor(guildID)

	// Serialized per partition rather than per user: the guild aggregate in
	// PointsConfig is rewritten on every change, so two different users'
	// raters would still race on it under a narrower key.
	unlock := l.keys.lock(partition)
	defer unlock()

	cfg, err := l.repo.GetConfig(ctx, partition)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		// A point reaction can only arrive after an emote was configured,
		// so this guards against config deletion racing the event.
		return nil, models.ErrPointsNotConfigured
	}

	cur, err := l.repo.GetUser(ctx, partition, user.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	op := "increment"
	if delta < 0 {
		op = "decrement"
	}

	var updated models.UserPoints
	if cur == nil {
		updated = models.UserPoints{
			DiscordID: user.ID,
			User:      user,
			Points:    models.ApplyDelta(0, delta),
		}
		if err := l.repo.CreateUser(ctx, partition, updated); err != nil {
			l.metrics.PointMutations.WithLabelValues(op, "error").Inc()
			return nil, err
		}
	} else {
		updated = *cur
		updated.User = user
		updated.Points = models.ApplyDelta(cur.Points, delta)
		if err := l.repo.UpdateUser(ctx, partition, updated); err != nil {
			l.metrics.PointMutations.WithLabelValues(op, "error").Inc()
			return nil, err
		}
	}

	cfg.Total = models.ApplyDelta(cfg.Total, delta)
	if err := l.repo.SaveConfig(ctx, partition, *cfg); err != nil {
		// The user write already landed; the aggregate is now behind by
		// delta. Logged loudly since there is no transaction to roll back.
		l.metrics.PointMutations.WithLabelValues(op, "error").Inc()
		l.logger.Error("aggregate total update failed after user update",
			"partition", partition,
			"user", user.ID,
			"delta", delta,
			"error", err,
		)
		return nil, err
	}

	l.metrics.PointMutations.WithLabelValues(op, "ok").Inc()
	l.logger.Info("points changed",
		"partition", partition,
		"user", user.ID,
		"delta", delta,
		"points", updated.Points,
		"total", cfg.Total,
	)
	return &updated, nil
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the key
// space is bounded by the partitions seen in process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
