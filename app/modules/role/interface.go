package role

import (
	"context"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// Repository is the typed record access for role bindings and the role
// message singleton. GetRoleMessage returns (nil, nil) when no message has
// been set; an unset message is a normal state, not an error.
type Repository interface {
	AddBinding(ctx context.Context, partition string, ur models.UserRole) error
	ListBindings(ctx context.Context, partition string) ([]models.UserRole, error)
	DeleteBinding(ctx context.Context, partition, emoteKey string) (*models.UserRole, error)
	DeleteAllBindings(ctx context.Context, partition string) ([]models.UserRole, error)

	GetRoleMessage(ctx context.Context, partition string) (*models.RoleMessage, error)
	SaveRoleMessage(ctx context.Context, partition string, rm models.RoleMessage) error
}

// Service is the command-facing reaction-role surface.
type Service interface {
	AddUserRole(ctx context.Context, guildID models.GuildID, ur models.UserRole) (*models.UserRole, error)
	RemoveUserRole(ctx context.Context, guildID models.GuildID, roleID models.RoleID) (*models.UserRole, error)
	ListUserRoles(ctx context.Context, guildID models.GuildID) ([]models.UserRole, error)
	ResetUserRoles(ctx context.Context, guildID models.GuildID) ([]models.UserRole, error)

	SetRoleMessageText(ctx context.Context, guildID models.GuildID, text string, setBy models.UserRef) error
	GetRoleMessage(ctx context.Context, guildID models.GuildID) (*models.RoleMessage, error)
	PostRoleMessage(ctx context.Context, guildID models.GuildID, channelID models.ChannelID, postedBy models.UserRef) (*models.MessageRef, error)
	SetRoleMessageActive(ctx context.Context, guildID models.GuildID, active bool, by models.UserRef) error
}

// RoleChanger applies a single grant or revoke resulting from a reaction.
type RoleChanger interface {
	ApplyRoleChange(ctx context.Context, guildID models.GuildID, userID models.UserID, binding models.UserRole, grant bool) error
}
