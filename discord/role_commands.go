package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

func (b *Bot) handleRole(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID := models.GuildID(i.GuildID)
	om := optionMap(opts)

	switch sub {
	case "add":
		guildRole := om["role"].RoleValue(s, i.GuildID)
		emote, err := parseEmoteArg(om["emote"].StringValue())
		if err != nil {
			b.replyText(s, i, "That does not look like an emote. Use a unicode emoji or a custom emote from this server.")
			return
		}
		ur := models.UserRole{
			GuildRole:   models.RoleRef{ID: models.RoleID(guildRole.ID), Name: guildRole.Name},
			Emote:       emote,
			Description: om["description"].StringValue(),
		}
		if _, err := b.roles.AddUserRole(ctx, guildID, ur); err != nil {
			b.replyText(s, i, userMessage(err, "",
				"That role or emote is already used by another self-assignable role."))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Added %s as a user assignable role with the emote %s.", guildRole.Name, emote))

	case "remove":
		guildRole := om["role"].RoleValue(s, i.GuildID)
		if _, err := b.roles.RemoveUserRole(ctx, guildID, models.RoleID(guildRole.ID)); err != nil {
			b.replyText(s, i, userMessage(err,
				fmt.Sprintf("%s is not a user assignable role.", guildRole.Name), ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Removed %s from the user assignable roles.", guildRole.Name))

	case "reset":
		removed, err := b.roles.ResetUserRoles(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Removed all %d user assignable roles.", len(removed)))

	case "list":
		bindings, err := b.roles.ListUserRoles(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		if len(bindings) == 0 {
			b.replyText(s, i, "There are no user assignable roles on this server.")
			return
		}
		b.replyEmbeds(s, i, []*discordgo.MessageEmbed{roleListEmbed(bindings, authorRef(i))})

	case "message_set":
		text := om["text"].StringValue()
		if err := b.roles.SetRoleMessageText(ctx, guildID, text, authorRef(i)); err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		b.replyText(s, i, "Set the role message for this server.")

	case "message_show":
		rm, err := b.roles.GetRoleMessage(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		if rm == nil {
			b.replyText(s, i, "No role message set on this server")
			return
		}
		bindings, err := b.roles.ListUserRoles(ctx, guildID)
		if err != nil {
			b.replyText(s, i, userMessage(err, "", ""))
			return
		}
		b.replyEmbeds(s, i, []*discordgo.MessageEmbed{roleMessageEmbed(i.GuildID, rm, bindings, authorRef(i))})

	case "post":
		channel := om["channel"].ChannelValue(s)
		if channel.Type != discordgo.ChannelTypeGuildText {
			b.replyText(s, i, "The role message can only be posted in a text channel.")
			return
		}
		posted, err := b.roles.PostRoleMessage(ctx, guildID, models.ChannelID(channel.ID), authorRef(i))
		if err != nil {
			b.replyText(s, i, userMessage(err,
				"You need a role message and at least one user assignable role before posting.", ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Role message posted in <#%s>.", posted.ChannelID))

	case "set_active":
		state := om["state"].BoolValue()
		if err := b.roles.SetRoleMessageActive(ctx, guildID, state, authorRef(i)); err != nil {
			b.replyText(s, i, userMessage(err,
				"The role message has to be posted before its active state can change.", ""))
			return
		}
		b.replyText(s, i, fmt.Sprintf("Role message active state set to %t.", state))
	}
}
