package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// commandTimeout bounds the service work behind one interaction. Discord
// expects an initial response within three seconds.
const commandTimeout = 3 * time.Second

var (
	permManageMessages = int64(discordgo.PermissionManageMessages)
	permManageRoles    = int64(discordgo.PermissionManageRoles)
	permAdministrator  = int64(discordgo.PermissionAdministrator)
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "tag",
			Description: "Show pre-written tags",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show a tag by name",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "name",
							Description:  "Select a tag",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all tags on this server",
				},
			},
		},
		{
			Name:                     "tags",
			Description:              "Manage pre-written tags",
			DefaultMemberPermissions: &permManageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a new tag",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Tag name, one word",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "content",
							Description: "Tag content",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a tag",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "name",
							Description:  "Tag to remove",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
			},
		},
		{
			Name:                     "role",
			Description:              "Manage self-assignable reaction roles",
			DefaultMemberPermissions: &permManageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a role as user assignable",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role on this server",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emote",
							Description: "Emote for the role",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "description",
							Description: "Role description",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a role from the user assignable roles",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Remove all user assignable roles",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List the user assignable roles",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "message_set",
					Description: "Set the text for the role selection message",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Desired message text",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "message_show",
					Description: "Show the currently set role message",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "post",
					Description: "Post the role message in the specified channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel to post in",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set_active",
					Description: "Set the active state of the role message",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "state",
							Description: "New state",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "points",
			Description:              "Manage the grammar point system",
			DefaultMemberPermissions: &permAdministrator,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "emote_set",
					Description: "Set the emote that awards grammar points",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emote",
							Description: "Emote to award points with",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show the status of the point system",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the point leaderboard for this server",
				},
			},
		},
		{
			Name:        "user",
			Description: "User information",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Query information about a Discord profile",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to get info about",
							Required:    false,
						},
					},
				},
			},
		},
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(s, i)
	}
}

func (b *Bot) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	sub, opts := subcommandOf(data)

	switch data.Name {
	case "tag":
		b.handleTag(ctx, s, i, sub, opts)
	case "tags":
		b.handleTags(ctx, s, i, sub, opts)
	case "role":
		b.handleRole(ctx, s, i, sub, opts)
	case "points":
		b.handlePoints(ctx, s, i, sub, opts)
	case "user":
		b.handleUser(ctx, s, i, sub, opts)
	}
}

func (b *Bot) dispatchAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	switch data.Name {
	case "tag", "tags":
		b.autocompleteTagName(ctx, s, i)
	}
}

// subcommandOf unwraps the single subcommand layer every command here uses.
func subcommandOf(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", nil
	}
	return data.Options[0].Name, data.Options[0].Options
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// authorRef extracts the invoking user, which lives in Member for guild
// interactions and in User for DMs.
func authorRef(i *discordgo.InteractionCreate) models.UserRef {
	if i.Member != nil && i.Member.User != nil {
		return userRefOf(i.Member.User)
	}
	if i.User != nil {
		return userRefOf(i.User)
	}
	return models.UserRef{}
}

func (b *Bot) replyText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction", "error", err)
	}
}

func (b *Bot) replyEmbeds(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: embeds},
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction", "error", err)
	}
}

// userMessage renders a taxonomy error as a chat reply. Transport details
// never reach the channel.
func userMessage(err error, notFoundMsg, existsMsg string) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return notFoundMsg
	case errors.Is(err, models.ErrAlreadyExists):
		return existsMsg
	case errors.Is(err, models.ErrPointsNotConfigured):
		return "You need to choose an emote to collect points with, using the `/points emote_set` command."
	case errors.Is(err, models.ErrStoreUnavailable):
		return "The database is not reachable right now. Please try again in a moment."
	default:
		return "Something went wrong while handling the command."
	}
}
