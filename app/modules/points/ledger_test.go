package points

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/db/memdb"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

var (
	checkEmote = models.EmoteRef{ID: "555", Name: "check"}
	admin      = models.UserRef{ID: "admin-1", Username: "admin"}
	member     = models.UserRef{ID: "user-1", Username: "member"}
)

func newTestLedger() *Ledger {
	repo := &RepositoryImpl{Store: memdb.New()}
	return NewLedger(repo, metrics.New(prometheus.NewRegistry()), slog.Default())
}

func TestSetPointsEmote(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	cfg, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)
	assert.True(t, cfg.Active)
	assert.Equal(t, uint32(0), cfg.Total)
	assert.Equal(t, admin.ID, cfg.SetBy.ID)
}

func TestSetPointsEmoteKeepsTotalAndState(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)
	_, err = l.ChangePoints(ctx, guild, member, 3)
	require.NoError(t, err)

	// Swapping the emote preserves the aggregate.
	newEmote := models.EmoteRef{Name: "⭐"}
	cfg, err := l.SetPointsEmote(ctx, guild, newEmote, admin)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.Total)
	assert.True(t, cfg.Emote.Equals(newEmote))
}

func TestGetPointsConfigUnconfigured(t *testing.T) {
	l := newTestLedger()
	_, err := l.GetPointsConfig(context.Background(), "guild-7")
	assert.ErrorIs(t, err, models.ErrPointsNotConfigured)
}

func TestChangePointsUnconfigured(t *testing.T) {
	l := newTestLedger()
	_, err := l.ChangePoints(context.Background(), "guild-7", member, 1)
	assert.ErrorIs(t, err, models.ErrPointsNotConfigured)
}

func TestChangePointsCreatesUserOnFirstAward(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)

	up, err := l.ChangePoints(ctx, guild, member, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), up.Points)
	assert.Equal(t, member.ID, up.DiscordID)

	cfg, err := l.GetPointsConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cfg.Total)
}

func TestChangePointsAddRemovePairIsNeutral(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)

	_, err = l.ChangePoints(ctx, guild, member, 1)
	require.NoError(t, err)
	up, err := l.ChangePoints(ctx, guild, member, -1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), up.Points)

	cfg, err := l.GetPointsConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cfg.Total)
}

func TestChangePointsClampsAtZero(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)

	// A removal for a user with no record clamps instead of underflowing.
	up, err := l.ChangePoints(ctx, guild, member, -1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), up.Points)

	cfg, err := l.GetPointsConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cfg.Total)
}

func TestChangePointsRefreshesUserSnapshot(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)
	_, err = l.ChangePoints(ctx, guild, member, 1)
	require.NoError(t, err)

	renamed := member
	renamed.Username = "renamed"
	up, err := l.ChangePoints(ctx, guild, renamed, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", up.User.Username)
	assert.Equal(t, uint32(2), up.Points)
}

// gatedRepo delegates to a real repository but lets a test stall a config
// read so an emote swap can be interleaved with a concurrent point change.
type gatedRepo struct {
	Repository
	GetConfigFunc func(ctx context.Context, partition string) (*models.PointsConfig, error)
}

func (g *gatedRepo) GetConfig(ctx context.Context, partition string) (*models.PointsConfig, error) {
	if g.GetConfigFunc != nil {
		return g.GetConfigFunc(ctx, partition)
	}
	return g.Repository.GetConfig(ctx, partition)
}

func TestSetPointsEmoteDoesNotRevertConcurrentAward(t *testing.T) {
	inner := &RepositoryImpl{Store: memdb.New()}
	repo := &gatedRepo{Repository: inner}
	l := NewLedger(repo, metrics.New(prometheus.NewRegistry()), slog.Default())
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)
	_, err = l.ChangePoints(ctx, guild, member, 5)
	require.NoError(t, err)

	// Stall the next emote swap between its config read and its write while a
	// point award runs. The swap holds the partition lock across the gap, so
	// the award has to wait and its increment survives the swap's write-back.
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.GetConfigFunc = func(ctx context.Context, partition string) (*models.PointsConfig, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		return inner.GetConfig(ctx, partition)
	}

	newEmote := models.EmoteRef{Name: "⭐"}
	swapDone := make(chan error, 1)
	go func() {
		_, err := l.SetPointsEmote(ctx, guild, newEmote, admin)
		swapDone <- err
	}()
	<-entered

	awardDone := make(chan error, 1)
	go func() {
		_, err := l.ChangePoints(ctx, guild, member, 1)
		awardDone <- err
	}()

	awardSettled := false
	select {
	case err := <-awardDone:
		// The award got through while the swap was mid read-modify-write.
		awardSettled = true
		require.NoError(t, err)
	case <-time.After(100 * time.Millisecond):
		// The award is queued behind the swap's lock.
	}
	close(release)

	require.NoError(t, <-swapDone)
	if !awardSettled {
		require.NoError(t, <-awardDone)
	}

	cfg, err := l.GetPointsConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), cfg.Total)
	assert.True(t, cfg.Emote.Equals(newEmote))
}

func TestChangePointsConcurrent(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)

	raters := []models.UserRef{
		{ID: "user-1", Username: "one"},
		{ID: "user-2", Username: "two"},
		{ID: "user-3", Username: "three"},
	}
	const perUser = 20

	var wg sync.WaitGroup
	for _, u := range raters {
		for range perUser {
			wg.Add(1)
			go func(u models.UserRef) {
				defer wg.Done()
				_, err := l.ChangePoints(ctx, guild, u, 1)
				assert.NoError(t, err)
			}(u)
		}
	}
	wg.Wait()

	for _, u := range raters {
		up, err := l.GetUserPoints(ctx, guild, u.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(perUser), up.Points)
	}

	// The guild aggregate saw every one of the interleaved writes.
	cfg, err := l.GetPointsConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(raters)*perUser), cfg.Total)
}

func TestGetAllUserPointsSorted(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := l.SetPointsEmote(ctx, guild, checkEmote, admin)
	require.NoError(t, err)

	scores := map[models.UserRef]int{
		{ID: "user-1", Username: "one"}:   2,
		{ID: "user-2", Username: "two"}:   5,
		{ID: "user-3", Username: "three"}: 1,
	}
	for u, n := range scores {
		_, err := l.ChangePoints(ctx, guild, u, n)
		require.NoError(t, err)
	}

	users, err := l.GetAllUserPoints(ctx, guild)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, models.UserID("user-2"), users[0].DiscordID)
	assert.Equal(t, models.UserID("user-1"), users[1].DiscordID)
	assert.Equal(t, models.UserID("user-3"), users[2].DiscordID)
}

func TestPointsArePartitionedPerGuild(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	_, err := l.SetPointsEmote(ctx, "guild-a", checkEmote, admin)
	require.NoError(t, err)
	_, err = l.SetPointsEmote(ctx, "guild-b", checkEmote, admin)
	require.NoError(t, err)

	_, err = l.ChangePoints(ctx, "guild-a", member, 4)
	require.NoError(t, err)

	cfgA, err := l.GetPointsConfig(ctx, "guild-a")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfgA.Total)

	cfgB, err := l.GetPointsConfig(ctx, "guild-b")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cfgB.Total)

	_, err = l.GetUserPoints(ctx, "guild-b", member.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
