package tag

import (
	"context"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// Repository is the typed record access for tags.
type Repository interface {
	Create(ctx context.Context, partition string, t models.Tag) error
	Get(ctx context.Context, partition, name string) (*models.Tag, error)
	List(ctx context.Context, partition string) ([]models.Tag, error)
	Delete(ctx context.Context, partition, name string) (*models.Tag, error)
}

// Service is the command-facing tag surface.
type Service interface {
	CreateTag(ctx context.Context, guildID models.GuildID, t models.Tag) (*models.Tag, error)
	GetTag(ctx context.Context, guildID models.GuildID, name string) (*models.Tag, error)
	ListTags(ctx context.Context, guildID models.GuildID) ([]models.Tag, error)
	SearchTags(ctx context.Context, guildID models.GuildID, partial string) []string
	DeleteTag(ctx context.Context, guildID models.GuildID, name string) (*models.Tag, error)
}
