package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

const embedColor = 0x3498DB

// leaderboardChunkSize is how many entries fit one leaderboard embed.
const leaderboardChunkSize = 20

func baseEmbed(title string, requester models.UserRef) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: embedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by: %s", requester.Username),
			IconURL: requester.AvatarURL,
		},
	}
}

func tagListEmbed(tags []models.Tag, requester models.UserRef) *discordgo.MessageEmbed {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	embed := baseEmbed("Tags", requester)
	embed.Description = strings.Join(names, ", ")
	return embed
}

func roleListEmbed(bindings []models.UserRole, requester models.UserRef) *discordgo.MessageEmbed {
	embed := baseEmbed("User assignable roles", requester)
	var sb strings.Builder
	for _, b := range bindings {
		fmt.Fprintf(&sb, "%s %s: %s\n", b.Emote, b.GuildRole.Name, b.Description)
	}
	embed.Description = sb.String()
	return embed
}

func roleMessageEmbed(guildID string, rm *models.RoleMessage, bindings []models.UserRole, requester models.UserRef) *discordgo.MessageEmbed {
	embed := baseEmbed("Role message", requester)
	embed.Description = rm.Text

	roleNames := make([]string, 0, len(bindings))
	for _, b := range bindings {
		roleNames = append(roleNames, b.GuildRole.Name)
	}
	roles := strings.Join(roleNames, ", ")
	if roles == "" {
		roles = "none"
	}

	link := "not posted yet"
	if rm.IsPosted() {
		link = fmt.Sprintf("https://discord.com/channels/%s/%s/%s",
			guildID, rm.Posted.ChannelID, rm.Posted.ID)
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Roles", Value: roles},
		{Name: "Message link", Value: link},
		{Name: "Is active", Value: fmt.Sprintf("%t", rm.Active)},
	}
	return embed
}

func pointsStatsEmbed(cfg *models.PointsConfig, requester models.UserRef) *discordgo.MessageEmbed {
	embed := baseEmbed("Point system", requester)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Emote", Value: cfg.Emote.String()},
		{Name: "Is active", Value: fmt.Sprintf("%t", cfg.Active)},
		{Name: "Total points awarded", Value: fmt.Sprintf("%d", cfg.Total)},
		{Name: "Set by", Value: cfg.SetBy.Username},
	}
	return embed
}

func userInfoEmbed(user models.UserRef, joinedAt, createdAt time.Time, points uint32, requester models.UserRef) *discordgo.MessageEmbed {
	embed := baseEmbed(user.Username, requester)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL}

	joined := "unknown"
	if !joinedAt.IsZero() {
		joined = joinedAt.Format(time.RFC1123)
	}
	created := "unknown"
	if !createdAt.IsZero() {
		created = createdAt.Format(time.RFC1123)
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "ID", Value: string(user.ID)},
		{Name: "Joined at", Value: joined},
		{Name: "Created at", Value: created},
		{Name: "Points", Value: fmt.Sprintf("%d", points)},
	}
	return embed
}

// leaderboardEmbeds renders the ranking in fixed-size chunks. Callers pass
// the users already sorted by points.
func leaderboardEmbeds(users []models.UserPoints, requester models.UserRef) []*discordgo.MessageEmbed {
	var embeds []*discordgo.MessageEmbed
	for start := 0; start < len(users); start += leaderboardChunkSize {
		end := start + leaderboardChunkSize
		if end > len(users) {
			end = len(users)
		}

		var sb strings.Builder
		for idx, up := range users[start:end] {
			fmt.Fprintf(&sb, "%d. %s: %d\n", start+idx+1, up.User.Username, up.Points)
		}

		title := "Leaderboard"
		if start > 0 {
			title = fmt.Sprintf("Leaderboard (%d-%d)", start+1, end)
		}
		embed := baseEmbed(title, requester)
		embed.Description = sb.String()
		embeds = append(embeds, embed)
	}
	return embeds
}
