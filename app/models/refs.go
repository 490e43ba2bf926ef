package models

import "fmt"

// Snowflake ID types as delivered by the Discord gateway. Kept as strings
// end to end; the bot never does arithmetic on them.
type (
	GuildID   string
	UserID    string
	RoleID    string
	ChannelID string
	MessageID string
	EmoteID   string
)

// GlobalPartition is the partition used when a command arrives without a
// guild context (DMs).
const GlobalPartition = "global"

// PartitionFor resolves the storage partition for a guild. Every persistence
// call takes the partition explicitly; there is no session-wide "current
// guild" anywhere in the bot.
func PartitionFor(guildID GuildID) string {
	if guildID == "" {
		return GlobalPartition
	}
	return string(guildID)
}

// UserRef is a snapshot of a Discord user at the time a record was written.
// The snapshot can go stale (name changes); the points ledger refreshes it on
// every update.
type UserRef struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RoleRef identifies a guild role.
type RoleRef struct {
	ID   RoleID `json:"id"`
	Name string `json:"name"`
}

// EmoteRef is a stable emoji identity: a guild-custom emote carries a
// snowflake ID, a unicode emoji carries the literal in Name with an empty ID.
type EmoteRef struct {
	ID       EmoteID `json:"id,omitempty"`
	Name     string  `json:"name"`
	Animated bool    `json:"animated,omitempty"`
}

// IsCustom reports whether the emote is a guild-custom emote.
func (e EmoteRef) IsCustom() bool {
	return e.ID != ""
}

// Equals compares two emotes by stable identity: custom emotes by ID,
// unicode emotes by literal. Display names of custom emotes are ignored.
func (e EmoteRef) Equals(other EmoteRef) bool {
	if e.IsCustom() || other.IsCustom() {
		return e.ID == other.ID
	}
	return e.Name == other.Name
}

// Key returns the identity string used when an emote serves as a record key.
func (e EmoteRef) Key() string {
	if e.IsCustom() {
		return string(e.ID)
	}
	return e.Name
}

// String renders the emote in Discord message syntax.
func (e EmoteRef) String() string {
	if !e.IsCustom() {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID)
	}
	return fmt.Sprintf("<:%s:%s>", e.Name, e.ID)
}

// APIName returns the emote in the channelID/messageID/emoji REST path form:
// "name:id" for custom emotes, the literal for unicode.
func (e EmoteRef) APIName() string {
	if e.IsCustom() {
		return fmt.Sprintf("%s:%s", e.Name, e.ID)
	}
	return e.Name
}

// MessageRef points at a message the bot posted or fetched.
type MessageRef struct {
	ID        MessageID `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
}

// FetchedMessage is the subset of a gateway message fetch the reconciler
// needs: where it lives and who wrote it.
type FetchedMessage struct {
	Ref    MessageRef
	Author UserRef
}
