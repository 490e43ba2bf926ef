package models

// ReactionKind is the closed variant of reaction gateway events.
type ReactionKind string

const (
	ReactionAdd    ReactionKind = "add"
	ReactionRemove ReactionKind = "remove"
)

// Delta returns the point delta a reaction of this kind applies.
func (k ReactionKind) Delta() int {
	if k == ReactionRemove {
		return -1
	}
	return 1
}

// ReactionEvent is the structured payload published for every reaction-add
// and reaction-remove gateway event. GuildID is empty for DM reactions.
type ReactionEvent struct {
	Kind      ReactionKind `json:"kind"`
	Emote     EmoteRef     `json:"emote"`
	MessageID MessageID    `json:"message_id"`
	ChannelID ChannelID    `json:"channel_id"`
	GuildID   GuildID      `json:"guild_id,omitempty"`
	UserID    UserID       `json:"user_id"`
}

// Partition returns the storage partition the event belongs to.
func (e ReactionEvent) Partition() string {
	return PartitionFor(e.GuildID)
}
