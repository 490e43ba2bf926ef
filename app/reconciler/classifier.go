// Package reconciler turns raw reaction gateway events into role or point
// mutations. Classification is pure data-in/decision-out; all I/O lives in
// the dispatching Reconciler so the decision logic tests without a gateway.
package reconciler

import "github.com/grammar-gang/grammar-bot/app/models"

// Target says which tracked feature a reaction event belongs to.
type Target int

const (
	// TargetNone covers self-reactions, untracked messages, unbound emotes
	// and paused features.
	TargetNone Target = iota

	// TargetRoleMessage marks a reaction on the posted role-assignment
	// message.
	TargetRoleMessage

	// TargetPoints marks a reaction with the configured points emote.
	TargetPoints
)

// String labels the target for logs and metrics.
func (t Target) String() string {
	switch t {
	case TargetRoleMessage:
		return "role_message"
	case TargetPoints:
		return "points"
	default:
		return "none"
	}
}

// ClassifyTarget decides what a reaction event is about, in priority order:
// self-reactions are discarded first, then a match against the posted role
// message wins over the points emote, then everything else is a no-op.
//
// A role message that exists but was never posted (Posted == nil, the state
// between "set text" and "post") simply does not match. Inactive features
// classify as TargetNone so a paused role message also shields its reactions
// from being counted as point events.
func ClassifyTarget(ev models.ReactionEvent, selfID models.UserID, roleMsg *models.RoleMessage, cfg *models.PointsConfig) Target {
	if ev.UserID == selfID {
		return TargetNone
	}

	if roleMsg.IsPosted() && roleMsg.Posted.ID == ev.MessageID {
		if !roleMsg.Active {
			return TargetNone
		}
		return TargetRoleMessage
	}

	if cfg != nil && cfg.Active && cfg.Emote.Equals(ev.Emote) {
		return TargetPoints
	}

	return TargetNone
}

// MatchBinding finds the role binding triggered by an emote, or nil when the
// emote is not bound to any role.
func MatchBinding(bindings []models.UserRole, emote models.EmoteRef) *models.UserRole {
	for i := range bindings {
		if bindings[i].Emote.Equals(emote) {
			return &bindings[i]
		}
	}
	return nil
}
