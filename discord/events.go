package discord

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/grammar-gang/grammar-bot/app/eventbus"
	"github.com/grammar-gang/grammar-bot/app/models"
)

func (b *Bot) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.publishReaction(eventbus.TopicReactionAdded, models.ReactionAdd, r.MessageReaction)
}

func (b *Bot) onReactionRemove(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.publishReaction(eventbus.TopicReactionRemoved, models.ReactionRemove, r.MessageReaction)
}

// publishReaction forwards a raw gateway reaction to the bus. Every handler
// invocation runs on its own goroutine; no filtering happens here so the
// reconciler sees the full stream, self-reactions included.
func (b *Bot) publishReaction(topic string, kind models.ReactionKind, r *discordgo.MessageReaction) {
	ev := models.ReactionEvent{
		Kind:      kind,
		Emote:     emoteRefOf(r.Emoji),
		MessageID: models.MessageID(r.MessageID),
		ChannelID: models.ChannelID(r.ChannelID),
		GuildID:   models.GuildID(r.GuildID),
		UserID:    models.UserID(r.UserID),
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("failed to marshal reaction event", "error", err)
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	middleware.SetCorrelationID(uuid.NewString(), msg)

	if err := b.publisher.Publish(topic, msg); err != nil {
		b.logger.Error("failed to publish reaction event",
			"topic", topic,
			"message_id", r.MessageID,
			"error", err,
		)
	}
}
