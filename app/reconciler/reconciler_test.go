package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

func newTestReconciler(roles *FakeRoleSource, points *FakePointsSource, mutator *FakeRoleChanger, ledger *FakePointsChanger, resolver *FakeResolver) *Reconciler {
	m := metrics.New(prometheus.NewRegistry())
	tracer := noop.NewTracerProvider().Tracer("test")
	return New(roles, points, mutator, ledger, resolver, m, tracer, slog.Default())
}

func TestReconcileRoleGrantAndRevoke(t *testing.T) {
	verified := models.UserRole{
		GuildRole: models.RoleRef{ID: "100", Name: "Verified"},
		Emote:     models.EmoteRef{ID: "556", Name: "Verified"},
	}
	roles := &FakeRoleSource{
		GetRoleMessageFunc: func(ctx context.Context, partition string) (*models.RoleMessage, error) {
			return &models.RoleMessage{
				Text:   "react to pick",
				Posted: &models.MessageRef{ID: "999", ChannelID: "chan-42"},
				Active: true,
			}, nil
		},
		ListBindingsFunc: func(ctx context.Context, partition string) ([]models.UserRole, error) {
			return []models.UserRole{verified}, nil
		},
	}
	mutator := &FakeRoleChanger{}
	ledger := &FakePointsChanger{}
	recon := newTestReconciler(roles, &FakePointsSource{}, mutator, ledger, &FakeResolver{Self: selfID})

	ev := reaction("user-1", "999", verified.Emote)
	require.NoError(t, recon.Reconcile(context.Background(), ev))

	ev.Kind = models.ReactionRemove
	require.NoError(t, recon.Reconcile(context.Background(), ev))

	require.Len(t, mutator.calls, 2)
	assert.True(t, mutator.calls[0].Grant)
	assert.False(t, mutator.calls[1].Grant)
	assert.Equal(t, models.RoleID("100"), mutator.calls[0].Binding.GuildRole.ID)
	assert.Equal(t, models.UserID("user-1"), mutator.calls[0].UserID)
	assert.Empty(t, ledger.calls)
}

func TestReconcileUnboundEmoteOnRoleMessage(t *testing.T) {
	roles := &FakeRoleSource{
		GetRoleMessageFunc: func(ctx context.Context, partition string) (*models.RoleMessage, error) {
			return &models.RoleMessage{
				Text:   "react to pick",
				Posted: &models.MessageRef{ID: "999", ChannelID: "chan-42"},
				Active: true,
			}, nil
		},
		ListBindingsFunc: func(ctx context.Context, partition string) ([]models.UserRole, error) {
			return []models.UserRole{{
				GuildRole: models.RoleRef{ID: "100", Name: "Verified"},
				Emote:     models.EmoteRef{ID: "556", Name: "Verified"},
			}}, nil
		},
	}
	mutator := &FakeRoleChanger{}
	recon := newTestReconciler(roles, &FakePointsSource{}, mutator, &FakePointsChanger{}, &FakeResolver{Self: selfID})

	err := recon.Reconcile(context.Background(), reaction("user-1", "999", models.EmoteRef{Name: "👍"}))
	require.NoError(t, err)
	assert.Empty(t, mutator.calls)
}

func TestReconcilePoints(t *testing.T) {
	checkEmote := models.EmoteRef{ID: "555", Name: "check"}
	author := models.UserRef{ID: "author-1", Username: "writer"}

	points := &FakePointsSource{
		GetConfigFunc: func(ctx context.Context, partition string) (*models.PointsConfig, error) {
			return &models.PointsConfig{Emote: checkEmote, Active: true}, nil
		},
	}

	tests := []struct {
		name      string
		kind      models.ReactionKind
		author    models.UserRef
		reactor   models.UserID
		wantCalls int
		wantDelta int
	}{
		{name: "add awards a point", kind: models.ReactionAdd, author: author, reactor: "user-1", wantCalls: 1, wantDelta: 1},
		{name: "remove revokes a point", kind: models.ReactionRemove, author: author, reactor: "user-1", wantCalls: 1, wantDelta: -1},
		{name: "self-award is a no-op", kind: models.ReactionAdd, author: author, reactor: "author-1", wantCalls: 0},
		{name: "rating the bot is a no-op", kind: models.ReactionAdd, author: models.UserRef{ID: selfID}, reactor: "user-1", wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &FakePointsChanger{}
			resolver := &FakeResolver{
				Self: selfID,
				FetchMessageFunc: func(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error) {
					return &models.FetchedMessage{
						Ref:    models.MessageRef{ID: messageID, ChannelID: channelID},
						Author: tt.author,
					}, nil
				},
			}
			recon := newTestReconciler(&FakeRoleSource{}, points, &FakeRoleChanger{}, ledger, resolver)

			ev := reaction(tt.reactor, "111", checkEmote)
			ev.Kind = tt.kind
			require.NoError(t, recon.Reconcile(context.Background(), ev))

			require.Len(t, ledger.calls, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, tt.author, ledger.calls[0].User)
				assert.Equal(t, tt.wantDelta, ledger.calls[0].Delta)
			}
		})
	}
}

func TestReconcilePointsDeletedMessage(t *testing.T) {
	checkEmote := models.EmoteRef{ID: "555", Name: "check"}
	points := &FakePointsSource{
		GetConfigFunc: func(ctx context.Context, partition string) (*models.PointsConfig, error) {
			return &models.PointsConfig{Emote: checkEmote, Active: true}, nil
		},
	}
	ledger := &FakePointsChanger{}
	resolver := &FakeResolver{
		Self: selfID,
		FetchMessageFunc: func(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error) {
			return nil, models.ErrNotFound
		},
	}
	recon := newTestReconciler(&FakeRoleSource{}, points, &FakeRoleChanger{}, ledger, resolver)

	err := recon.Reconcile(context.Background(), reaction("user-1", "111", checkEmote))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, ledger.calls)
}

func TestReconcileRecordLoadFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	roles := &FakeRoleSource{
		GetRoleMessageFunc: func(ctx context.Context, partition string) (*models.RoleMessage, error) {
			return nil, storeErr
		},
	}
	recon := newTestReconciler(roles, &FakePointsSource{}, &FakeRoleChanger{}, &FakePointsChanger{}, &FakeResolver{Self: selfID})

	err := recon.Reconcile(context.Background(), reaction("user-1", "999", models.EmoteRef{Name: "👍"}))
	assert.ErrorIs(t, err, storeErr)
}
