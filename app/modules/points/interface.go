package points

import (
	"context"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// Repository is the typed record access for the points configuration
// singleton and per-user point records. GetConfig returns (nil, nil) when no
// emote has been configured.
type Repository interface {
	GetConfig(ctx context.Context, partition string) (*models.PointsConfig, error)
	SaveConfig(ctx context.Context, partition string, cfg models.PointsConfig) error

	GetUser(ctx context.Context, partition string, userID models.UserID) (*models.UserPoints, error)
	CreateUser(ctx context.Context, partition string, up models.UserPoints) error
	UpdateUser(ctx context.Context, partition string, up models.UserPoints) error
	ListUsers(ctx context.Context, partition string) ([]models.UserPoints, error)
}

// Service is the command-facing points surface plus the ledger mutation used
// by the reconciler.
type Service interface {
	SetPointsEmote(ctx context.Context, guildID models.GuildID, emote models.EmoteRef, setBy models.UserRef) (*models.PointsConfig, error)
	GetPointsConfig(ctx context.Context, guildID models.GuildID) (*models.PointsConfig, error)
	GetUserPoints(ctx context.Context, guildID models.GuildID, userID models.UserID) (*models.UserPoints, error)
	GetAllUserPoints(ctx context.Context, guildID models.GuildID) ([]models.UserPoints, error)
	ChangePoints(ctx context.Context, guildID models.GuildID, user models.UserRef, delta int) (*models.UserPoints, error)
}
