package models

// Record collection names inside a partition. These mirror the table names of
// the document store layout: one collection per record kind.
const (
	CollectionTags         = "tags"
	CollectionRoles        = "roles"
	CollectionRoleMessage  = "rolemessage"
	CollectionPointsConfig = "pointemote"
	CollectionUsers        = "users"
)

// SingletonKey is the fixed key under which per-partition singleton records
// (RoleMessage, PointsConfig) are stored.
const SingletonKey = "0"

// Tag is a named, pre-written snippet posted on demand. Immutable except via
// delete and recreate; the name is the record key, so at most one tag per
// name exists in a partition.
type Tag struct {
	Name    string  `json:"name"`
	Content string  `json:"content"`
	Creator UserRef `json:"creator"`
}

// UserRole binds a guild role to the emote that self-assigns it. The emote
// identity is the record key; the role side of the binding is checked for
// uniqueness before insert since the store enforces no constraint on it.
type UserRole struct {
	GuildRole   RoleRef  `json:"guild_role"`
	Emote       EmoteRef `json:"emote"`
	Description string   `json:"desc"`
}

// RoleMessage is the per-partition singleton describing the reaction-role
// announcement. Posted is nil until an operator posts the message to a
// channel; Active pauses role granting without dropping the message binding.
type RoleMessage struct {
	Text     string      `json:"messagetext"`
	Posted   *MessageRef `json:"guild_message,omitempty"`
	Active   bool        `json:"active"`
	SetBy    UserRef     `json:"message_by"`
	PostedBy *UserRef    `json:"posted_by,omitempty"`
}

// IsPosted reports whether the role message has been posted to a channel.
func (rm *RoleMessage) IsPosted() bool {
	return rm != nil && rm.Posted != nil
}

// PointsConfig is the per-partition singleton for the reputation feature:
// which emote awards a point and the guild-wide aggregate of points awarded.
// Total is rewritten on every point change, which makes it the field most
// exposed to lost updates; the ledger serializes writers per partition+user.
type PointsConfig struct {
	Emote  EmoteRef `json:"guild_emote"`
	SetBy  UserRef  `json:"set_by"`
	Active bool     `json:"active"`
	Total  uint32   `json:"total"`
}

// UserPoints tracks one member's earned points, keyed by their Discord ID.
// Created lazily on the first point-earning event.
type UserPoints struct {
	DiscordID UserID  `json:"discord_id"`
	User      UserRef `json:"discord_user"`
	Points    uint32  `json:"grammarpoints"`
}

// ApplyDelta adds a signed delta to an unsigned counter, saturating at zero
// and at the uint32 ceiling. Underflow on repeated removals is a defect to
// guard against, not a behavior to preserve.
func ApplyDelta(current uint32, delta int) uint32 {
	if delta >= 0 {
		sum := uint64(current) + uint64(delta)
		if sum > uint64(^uint32(0)) {
			return ^uint32(0)
		}
		return uint32(sum)
	}
	dec := uint32(-delta)
	if dec >= current {
		return 0
	}
	return current - dec
}
