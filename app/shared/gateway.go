package shared

import (
	"context"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// DiscordGateway is the slice of the Discord API the core needs. The
// concrete implementation wraps a discordgo session; tests use programmable
// fakes. Mutation errors are mapped to the models taxonomy
// (ErrMemberNotFound, ErrForbidden) by the implementation.
type DiscordGateway interface {
	// SelfID returns the bot's own user ID, used to suppress reactions the
	// bot itself adds.
	SelfID() models.UserID

	AddRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error
	RemoveRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error

	// SendDM delivers a direct message. Failures (closed DMs) are expected
	// and left to the caller to swallow.
	SendDM(ctx context.Context, userID models.UserID, content string) error

	// FetchMessage resolves a message by channel and ID, primarily to find
	// the author of a point-reacted message.
	FetchMessage(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error)

	// SendChannelMessage posts content to a channel and returns a reference
	// to the created message.
	SendChannelMessage(ctx context.Context, channelID models.ChannelID, content string) (*models.MessageRef, error)

	// React adds the bot's own reaction to a message, used to seed the role
	// message with one reaction per bound emote.
	React(ctx context.Context, channelID models.ChannelID, messageID models.MessageID, emote models.EmoteRef) error
}
