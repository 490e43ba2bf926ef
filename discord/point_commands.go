package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

func (b *Bot) handlePoints(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := models.GuildID(i.GuildID)
	om := optionMap(opts)

	switch sub {
	case "emote_set":
		emote, err := parseEmoteArg(om["emote"].StringValue())
		if err != nil {
			b.replyText(s, i, "That does not look like an emote. Use a unicode emoji or a custom emote from this server.")
			return
		}
		cfg, err := b.points.SetPointsEmote(ctx, guildID, emote, authorRef(i))
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Set the new point emote to: %s", cfg.Emote))

	case "stats":
		cfg, err := b.points.GetPointsConfig(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		b.replyEmbeds(s, i, []*discordgo.MessageEmbed{pointsStatsEmbed(cfg, authorRef(i))})

	case "leaderboard":
		users, err := b.points.GetAllUserPoints(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		if len(users) == 0 {
			b.replyText(s, i, "Nobody has collected any points on this server yet.")
			return
		}
		b.replyEmbeds(s, i, leaderboardEmbeds(users, authorRef(i)))
	}
}
