package models

import "errors"

// Error taxonomy. Command handlers match these with errors.Is and render a
// chat reply; reaction handlers log and drop. Transport details are wrapped
// underneath and never shown to users.
var (
	// ErrAlreadyExists reports a key collision (tag name, role binding).
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound reports an absent record (tag, role binding, user).
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable reports a document-store transport failure after
	// the store's bounded retries were exhausted.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMemberNotFound reports that the target of a role mutation is no
	// longer a guild member.
	ErrMemberNotFound = errors.New("guild member not found")

	// ErrForbidden reports that the bot's permissions or role hierarchy
	// disallow a mutation.
	ErrForbidden = errors.New("operation forbidden")

	// ErrPointsNotConfigured reports a points operation before an emote was
	// configured for the partition.
	ErrPointsNotConfigured = errors.New("points emote not configured")
)
