package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

func (b *Bot) handleUser(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if sub != "info" {
		return
	}

	om := optionMap(opts)
	var target *discordgo.User
	if opt, ok := om["user"]; ok {
		target = opt.UserValue(s)
	} else if i.Member != nil {
		target = i.Member.User
	} else {
		target = i.User
	}
	if target == nil {
		b.replyText(s, i, "Could not resolve that user.")
		return
	}

	var joinedAt time.Time
	if i.GuildID != "" {
		member, err := s.GuildMember(i.GuildID, target.ID, discordgo.WithContext(ctx))
		if err == nil {
			joinedAt = member.JoinedAt
		} else {
			b.logger.Warn("failed to fetch guild member for user info",
				"user_id", target.ID, "error", err)
		}
	}

	createdAt, err := discordgo.SnowflakeTimestamp(target.ID)
	if err != nil {
		b.logger.Warn("failed to derive creation time from snowflake",
			"user_id", target.ID, "error", err)
	}

	var pts uint32
	up, err := b.points.GetUserPoints(ctx, models.GuildID(i.GuildID), models.UserID(target.ID))
	switch {
	case err == nil:
		pts = up.Points
	case errors.Is(err, models.ErrNotFound):
		// Never earned a point; zero is the honest answer.
	default:
		b.replyText(s, i, userMessage(err, "", ""))
		return
	}

	b.replyEmbeds(s, i, []*discordgo.MessageEmbed{
		userInfoEmbed(userRefOf(target), joinedAt, createdAt, pts, authorRef(i)),
	})
}
