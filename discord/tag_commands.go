package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

func (b *Bot) handleTag(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := models.GuildID(i.GuildID)
	om := optionMap(opts)

	switch sub {
	case "show":
		name := om["name"].StringValue()
		t, err := b.tags.GetTag(ctx, guildID, name)
		if err != nil {
			b.replyText(s, i, userMessage(err,
				fmt.Sprintf("No tag named %s exists.", name), ""))
			return
		}
		b.replyText(s, i, t.Content)

	case "list":
		tags, err := b.tags.ListTags(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		if len(tags) == 0 {
			b.replyText(s, i, "There are no tags on this server yet.")
			return
		}
		b.replyEmbeds(s, i, []*discordgo.MessageEmbed{tagListEmbed(tags, authorRef(i))})
	}
}

func (b *Bot) handleTags(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := models.GuildID(i.GuildID)
	om := optionMap(opts)

	switch sub {
	case "create":
		name := strings.TrimSpace(om["name"].StringValue())
		if len(strings.Fields(name)) != 1 {
			b.replyText(s, i, "Tag names have to be a single word.")
			return
		}
		t := models.Tag{
			Name:    name,
			Content: om["content"].StringValue(),
			Creator: authorRef(i),
		}
		if _, err := b.tags.CreateTag(ctx, guildID, t); err != nil {
			b.replyText(s, i, userMessage(err, "",
				fmt.Sprintf("A tag with the name %s already exists!", name)))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Tag %s created sucessfully!", name))

	case "remove":
		name := om["name"].StringValue()
		if _, err := b.tags.DeleteTag(ctx, guildID, name); err != nil {
			b.replyText(s, i, userMessage(err,
				fmt.Sprintf("No tag named %s exists.", name), ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Tag %s was removed.", name))
	}
}

// autocompleteTagName serves the tag name option on both the show and remove
// subcommands. Discord caps autocomplete responses at 25 choices.
func (b *Bot) autocompleteTagName(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	_, opts := subcommandOf(data)

	var partial string
	for _, opt := range opts {
		if opt.Focused {
			partial = opt.StringValue()
			break
		}
	}

	names := b.tags.SearchTags(ctx, models.GuildID(i.GuildID), partial)
	if len(names) > 25 {
		names = names[:25]
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: name,
		})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		b.logger.Error("failed to respond to autocomplete", "error", err)
	}
}
