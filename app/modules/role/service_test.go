package role

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/db/memdb"
)

var (
	operator = models.UserRef{ID: "op-1", Username: "operator"}

	verifiedBinding = models.UserRole{
		GuildRole:   models.RoleRef{ID: "100", Name: "Verified"},
		Emote:       models.EmoteRef{ID: "556", Name: "Verified"},
		Description: "verified members",
	}
	newsBinding = models.UserRole{
		GuildRole:   models.RoleRef{ID: "101", Name: "News"},
		Emote:       models.EmoteRef{Name: "📰"},
		Description: "news pings",
	}
)

func newTestRoleService() (*ServiceImpl, *FakeGateway) {
	gw := NewFakeGateway()
	svc := NewService(&RepositoryImpl{Store: memdb.New()}, gw, slog.Default())
	return svc, gw
}

func TestAddUserRole(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)
	_, err = svc.AddUserRole(ctx, guild, newsBinding)
	require.NoError(t, err)

	bindings, err := svc.ListUserRoles(ctx, guild)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
}

func TestAddUserRoleRejectsDoubleBinding(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)

	// Same emote, different role.
	dupEmote := models.UserRole{
		GuildRole: models.RoleRef{ID: "102", Name: "Other"},
		Emote:     verifiedBinding.Emote,
	}
	_, err = svc.AddUserRole(ctx, guild, dupEmote)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	// Same role, different emote.
	dupRole := models.UserRole{
		GuildRole: verifiedBinding.GuildRole,
		Emote:     models.EmoteRef{Name: "👍"},
	}
	_, err = svc.AddUserRole(ctx, guild, dupRole)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	bindings, err := svc.ListUserRoles(ctx, guild)
	require.NoError(t, err)
	assert.Len(t, bindings, 1)
}

func TestRemoveUserRole(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)

	removed, err := svc.RemoveUserRole(ctx, guild, verifiedBinding.GuildRole.ID)
	require.NoError(t, err)
	assert.Equal(t, verifiedBinding.Emote, removed.Emote)

	_, err = svc.RemoveUserRole(ctx, guild, verifiedBinding.GuildRole.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetUserRoles(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	_, err := svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)
	_, err = svc.AddUserRole(ctx, guild, newsBinding)
	require.NoError(t, err)

	removed, err := svc.ResetUserRoles(ctx, guild)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	bindings, err := svc.ListUserRoles(ctx, guild)
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestSetRoleMessageTextPreservesPosting(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	require.NoError(t, svc.SetRoleMessageText(ctx, guild, "first draft", operator))

	rm, err := svc.GetRoleMessage(ctx, guild)
	require.NoError(t, err)
	require.NotNil(t, rm)
	assert.Equal(t, "first draft", rm.Text)
	assert.False(t, rm.IsPosted())

	_, err = svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)
	_, err = svc.PostRoleMessage(ctx, guild, "chan-42", operator)
	require.NoError(t, err)

	// A text rewrite keeps the posted reference and active state.
	require.NoError(t, svc.SetRoleMessageText(ctx, guild, "second draft", operator))
	rm, err = svc.GetRoleMessage(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, "second draft", rm.Text)
	assert.True(t, rm.IsPosted())
	assert.True(t, rm.Active)
}

func TestPostRoleMessage(t *testing.T) {
	svc, gw := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	var sent string
	gw.SendChannelMessageFunc = func(ctx context.Context, channelID models.ChannelID, content string) (*models.MessageRef, error) {
		sent = content
		return &models.MessageRef{ID: "999", ChannelID: channelID}, nil
	}

	require.NoError(t, svc.SetRoleMessageText(ctx, guild, "pick your roles", operator))
	_, err := svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)
	_, err = svc.AddUserRole(ctx, guild, newsBinding)
	require.NoError(t, err)

	ref, err := svc.PostRoleMessage(ctx, guild, "chan-42", operator)
	require.NoError(t, err)
	assert.Equal(t, models.MessageID("999"), ref.ID)

	assert.Contains(t, sent, "pick your roles")
	assert.Contains(t, sent, "Verified")
	assert.Contains(t, sent, "📰 News: news pings")

	// One seed reaction per binding.
	var reacts int
	for _, step := range gw.Trace() {
		if strings.HasPrefix(step, "React(") {
			reacts++
		}
	}
	assert.Equal(t, 2, reacts)

	rm, err := svc.GetRoleMessage(ctx, guild)
	require.NoError(t, err)
	assert.True(t, rm.IsPosted())
	assert.True(t, rm.Active)
	require.NotNil(t, rm.PostedBy)
	assert.Equal(t, operator.ID, rm.PostedBy.ID)
}

func TestPostRoleMessageRequiresTextAndBindings(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	// No message, no bindings.
	_, err := svc.PostRoleMessage(ctx, guild, "chan-42", operator)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Message but no bindings.
	require.NoError(t, svc.SetRoleMessageText(ctx, guild, "pick", operator))
	_, err = svc.PostRoleMessage(ctx, guild, "chan-42", operator)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetRoleMessageActive(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()
	guild := models.GuildID("guild-7")

	// Unposted message cannot be toggled.
	require.NoError(t, svc.SetRoleMessageText(ctx, guild, "pick", operator))
	err := svc.SetRoleMessageActive(ctx, guild, false, operator)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AddUserRole(ctx, guild, verifiedBinding)
	require.NoError(t, err)
	_, err = svc.PostRoleMessage(ctx, guild, "chan-42", operator)
	require.NoError(t, err)

	require.NoError(t, svc.SetRoleMessageActive(ctx, guild, false, operator))
	rm, err := svc.GetRoleMessage(ctx, guild)
	require.NoError(t, err)
	assert.False(t, rm.Active)
	assert.True(t, rm.IsPosted())

	require.NoError(t, svc.SetRoleMessageActive(ctx, guild, true, operator))
	rm, err = svc.GetRoleMessage(ctx, guild)
	require.NoError(t, err)
	assert.True(t, rm.Active)
}

func TestGetRoleMessageUnset(t *testing.T) {
	svc, _ := newTestRoleService()
	rm, err := svc.GetRoleMessage(context.Background(), "guild-7")
	require.NoError(t, err)
	assert.Nil(t, rm)
}
