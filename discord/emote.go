package discord

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// customEmotePattern matches the chat syntax for guild-custom emotes,
// <:name:id> or <a:name:id>.
var customEmotePattern = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):([0-9]+)>$`)

// parseEmoteArg turns a raw emote command argument into an EmoteRef. Custom
// emotes arrive in chat syntax; anything else is taken as a unicode literal.
func parseEmoteArg(raw string) (models.EmoteRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.EmoteRef{}, fmt.Errorf("empty emote")
	}

	if m := customEmotePattern.FindStringSubmatch(raw); m != nil {
		return models.EmoteRef{
			ID:       models.EmoteID(m[3]),
			Name:     m[2],
			Animated: m[1] == "a",
		}, nil
	}

	if strings.ContainsAny(raw, "<>:") {
		return models.EmoteRef{}, fmt.Errorf("malformed emote %q", raw)
	}
	return models.EmoteRef{Name: raw}, nil
}

// emoteRefOf converts a gateway emoji payload.
func emoteRefOf(e discordgo.Emoji) models.EmoteRef {
	return models.EmoteRef{
		ID:       models.EmoteID(e.ID),
		Name:     e.Name,
		Animated: e.Animated,
	}
}
