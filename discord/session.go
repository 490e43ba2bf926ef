// Package discord adapts the discordgo gateway and REST API to the bot's
// narrow interfaces and hosts the slash-command surface.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// session abstracts the discordgo.Session methods the Gateway uses so tests
// can substitute a fake. *discordgo.Session satisfies this interface.
type session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// Gateway implements shared.DiscordGateway over a discordgo session.
type Gateway struct {
	session session
	selfID  models.UserID
}

var _ shared.DiscordGateway = (*Gateway)(nil)

// NewGateway wraps a session. The self ID becomes known once the gateway
// connection is ready; see Bot.Open.
func NewGateway(s session) *Gateway {
	return &Gateway{session: s}
}

func (g *Gateway) setSelfID(id models.UserID) {
	g.selfID = id
}

func (g *Gateway) SelfID() models.UserID {
	return g.selfID
}

func (g *Gateway) AddRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error {
	err := g.session.GuildMemberRoleAdd(string(guildID), string(userID), string(roleID), discordgo.WithContext(ctx))
	return mapMemberError(err)
}

func (g *Gateway) RemoveRole(ctx context.Context, guildID models.GuildID, userID models.UserID, roleID models.RoleID) error {
	err := g.session.GuildMemberRoleRemove(string(guildID), string(userID), string(roleID), discordgo.WithContext(ctx))
	return mapMemberError(err)
}

func (g *Gateway) SendDM(ctx context.Context, userID models.UserID, content string) error {
	channel, err := g.session.UserChannelCreate(string(userID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := g.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

func (g *Gateway) FetchMessage(ctx context.Context, channelID models.ChannelID, messageID models.MessageID) (*models.FetchedMessage, error) {
	msg, err := g.session.ChannelMessage(string(channelID), string(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapFetchError(err)
	}

	fetched := &models.FetchedMessage{
		Ref: models.MessageRef{
			ID:        models.MessageID(msg.ID),
			ChannelID: models.ChannelID(msg.ChannelID),
		},
	}
	if msg.Author != nil {
		fetched.Author = userRefOf(msg.Author)
	}
	return fetched, nil
}

func (g *Gateway) SendChannelMessage(ctx context.Context, channelID models.ChannelID, content string) (*models.MessageRef, error) {
	msg, err := g.session.ChannelMessageSend(string(channelID), content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapMemberError(err)
	}
	return &models.MessageRef{
		ID:        models.MessageID(msg.ID),
		ChannelID: models.ChannelID(msg.ChannelID),
	}, nil
}

func (g *Gateway) React(ctx context.Context, channelID models.ChannelID, messageID models.MessageID, emote models.EmoteRef) error {
	return g.session.MessageReactionAdd(string(channelID), string(messageID), emote.APIName(), discordgo.WithContext(ctx))
}

func userRefOf(u *discordgo.User) models.UserRef {
	return models.UserRef{
		ID:        models.UserID(u.ID),
		Username:  u.Username,
		AvatarURL: u.AvatarURL(""),
	}
}

// mapMemberError translates REST failures of member-targeted mutations into
// the models taxonomy.
func mapMemberError(err error) error {
	if err == nil {
		return nil
	}
	var rerr *discordgo.RESTError
	if !errors.As(err, &rerr) {
		return err
	}
	if rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%w: %s", models.ErrMemberNotFound, rerr.Message.Message)
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %s", models.ErrForbidden, rerr.Message.Message)
		}
	}
	if rerr.Response != nil && rerr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", models.ErrForbidden, err)
	}
	return err
}

// mapFetchError translates REST failures of message fetches.
func mapFetchError(err error) error {
	if err == nil {
		return nil
	}
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", models.ErrNotFound, err)
	}
	return err
}
