package reconciler

import (
	"context"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// ------------------------
// Fake record sources
// ------------------------

type FakeRoleSource struct {
	GetRoleMessageFunc func(ctx context.Context, partition string) (*models.RoleMessage, error)
	ListBindingsFunc   func(ctx context.Context, partition string) ([]models.UserRole, error)
}

func (f *FakeRoleSource) GetRoleMessage(ctx context.Context, partition string) (*models.RoleMessage, error) {
	if f.GetRoleMessageFunc != nil {
		return f.GetRoleMessageFunc(ctx, partition)
	}
	return nil, nil
}

func (f *FakeRoleSource) ListBindings(ctx context.Context, partition string) ([]models.UserRole, error) {
	if f.ListBindingsFunc != nil {
		return f.ListBindingsFunc(ctx, partition)
	}
	return nil, nil
}

type FakePointsSource struct {
	GetConfigFunc func(ctx context.Context, partition string) (*models.PointsConfig, error)
}

func (f *FakePointsSource) GetConfig(ctx context.Context, partition string) (*models.PointsConfig, error) {
	if f.GetConfigFunc != nil {
		return f.GetConfigFunc(ctx, partition)
	}
	return nil, nil
}

// ------------------------
// Fake dispatch targets
// ------------------------

type roleChangeCall struct {
	GuildID models.GuildID
	UserID  models.UserID
	Binding models.UserRole
	Grant   bool
}

type FakeRoleChanger struct {
	calls               []roleChangeCall
	ApplyRoleChangeFunc func(ctx context.Context, guildID models.GuildID, userID models.UserID, binding models.UserRole, grant bool) error
}

func (f *FakeRoleChanger) ApplyRoleChange(ctx context.Context, guildID models.GuildID, userID models.UserID, binding models.UserRole, grant bool) error {
	f.calls = append(f.calls, roleChangeCall{GuildID: guildID, UserID: userID, Binding: binding, Grant: grant})
	if f.ApplyRoleChangeFunc != nil {
		return f.ApplyRoleChangeFunc(ctx, guildID, userID, binding, grant)
	}
	return nil
}

type pointsChangeCall struct {
	GuildID models.GuildID
	User    models.UserRef
	Delta   int
}

type FakePointsChanger struct {
	calls            []pointsChangeCall
	ChangePointsFunc func(ctx context.Context, guildID models.GuildID, user models.UserRef, delta int) (*models.UserPoints, error)
}

func (f *FakePointsChanger) ChangePoints(ctx context.Context, guildID models.GuildID, user models.UserRef, delta int) (*models.UserPoints, error) {
	f.calls = append(f.calls, pointsChangeCall{GuildID: guildID, User: user, Delta: delta})
	if f.ChangePointsFunc != nil {
		return f.ChangePointsFunc(ctx, guildID, user, delta)
	}
	return &models.UserPoints{DiscordID: user.ID, User: user}, nil
}

// ------------------------
// Fake message resolver
// ------------------------

type FakeResolver struct {
	Self             models.UserID
	FetchMessageFunc func(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error)
}

func (f *FakeResolver) SelfID() models.UserID {
	return f.Self
}

func (f *FakeResolver) FetchMessage(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error) {
	if f.FetchMessageFunc != nil {
		return f.FetchMessageFunc(ctx, channelID, messageID)
	}
	return nil, models.ErrNotFound
}

var (
	_ RoleMessageSource = (*FakeRoleSource)(nil)
	_ PointsSource      = (*FakePointsSource)(nil)
	_ RoleChanger       = (*FakeRoleChanger)(nil)
	_ PointsChanger     = (*FakePointsChanger)(nil)
	_ MessageResolver   = (*FakeResolver)(nil)
)
