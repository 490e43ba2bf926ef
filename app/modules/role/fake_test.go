package role

import (
	"context"
	"fmt"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// ------------------------
// Fake Discord gateway
// ------------------------

type FakeGateway struct {
	trace []string

	Self                   models.UserID
	AddRoleFunc            func(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error
	RemoveRoleFunc         func(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error
	SendDMFunc             func(ctx context.Context, userID models.UserID, content string) error
	FetchMessageFunc       func(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error)
	SendChannelMessageFunc func(ctx context.Context, channelID models.ChannelID, content string) (*models.MessageRef, error)
	ReactFunc              func(ctx context.Context, channelID models.ChannelID, messageID models.MessageID, emote models.EmoteRef) error
}

var _ shared.DiscordGateway = (*FakeGateway)(nil)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{trace: []string{}, Self: "bot-1"}
}

func (f *FakeGateway) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGateway) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGateway) SelfID() models.UserID {
	return f.Self
}

func (f *FakeGateway) AddRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error {
	f.record(fmt.Sprintf("AddRole(%s,%s)", userID, roleID))
	if f.AddRoleFunc != nil {
		return f.AddRoleFunc(ctx, guildID, userID, roleID)
	}
	return nil
}

func (f *FakeGateway) RemoveRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error {
	f.record(fmt.Sprintf("RemoveRole(%s,%s)", userID, roleID))
	if f.RemoveRoleFunc != nil {
		return f.RemoveRoleFunc(ctx, guildID, userID, roleID)
	}
	return nil
}

func (f *FakeGateway) SendDM(ctx context.Context, userID models.UserID, content string) error {
	f.record(fmt.Sprintf("SendDM(%s)", userID))
	if f.SendDMFunc != nil {
		return f.SendDMFunc(ctx, userID, content)
	}
	return nil
}

func (f *FakeGateway) FetchMessage(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error) {
	f.record(fmt.Sprintf("FetchMessage(%s,%s)", channelID, messageID))
	if f.FetchMessageFunc != nil {
		return f.FetchMessageFunc(ctx, channelID, messageID)
	}
	return nil, models.ErrNotFound
}

func (f *FakeGateway) SendChannelMessage(ctx context.Context, channelID models.ChannelID, content string) (*models.MessageRef, error) {
	f.record(fmt.Sprintf("SendChannelMessage(%s)", channelID))
	if f.SendChannelMessageFunc != nil {
		return f.SendChannelMessageFunc(ctx, channelID, content)
	}
	return &models.MessageRef{ID: "posted-1", ChannelID: channelID}, nil
}

func (f *FakeGateway) React(ctx context.Context, channelID models.ChannelID, messageID models.MessageID, emote models.EmoteRef) error {
	f.record(fmt.Sprintf("React(%s)", emote.Key()))
	if f.ReactFunc != nil {
		return f.ReactFunc(ctx, channelID, messageID, emote)
	}
	return nil
}
