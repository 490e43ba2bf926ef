package tag

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/grammar-gang/grammar-bot/app/models"
)

// ServiceImpl handles tag commands.
type ServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

// NewService creates a tag service.
func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{repo: repo, logger: logger}
}

// CreateTag stores a new tag. The name is checked before the insert since the
// store surfaces no uniqueness constraint of its own; the insert still maps a
// racing duplicate to ErrAlreadyExists.
func (s *ServiceImpl) CreateTag(ctx context.Context, guildID models.GuildID, t models.Tag) (*models.Tag, error) {
	partition := models.PartitionFor(guildID)

	if _, err := s.repo.Get(ctx, partition, t.Name); err == nil {
		return nil, models.ErrAlreadyExists
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, partition, t); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		"partition", partition,
		"tag", t.Name,
		"creator", t.Creator.ID,
	)
	return &t, nil
}

// GetTag fetches a tag by name.
func (s *ServiceImpl) GetTag(ctx context.Context, guildID models.GuildID, name string) (*models.Tag, error) {
	return s.repo.Get(ctx, models.PartitionFor(guildID), name)
}

// ListTags returns every tag in the guild's partition, possibly none.
func (s *ServiceImpl) ListTags(ctx context.Context, guildID models.GuildID) ([]models.Tag, error) {
	return s.repo.List(ctx, models.PartitionFor(guildID))
}

// SearchTags returns tag names containing the partial string, for command
// autocompletion. Lookup failures degrade to an empty completion list.
func (s *ServiceImpl) SearchTags(ctx context.Context, guildID models.GuildID, partial string) []string {
	tags, err := s.repo.List(ctx, models.PartitionFor(guildID))
	if err != nil {
		s.logger.Warn("tag search failed", "error", err)
		return nil
	}

	var names []string
	for _, t := range tags {
		if strings.Contains(t.Name, partial) {
			names = append(names, t.Name)
		}
	}
	return names
}

// DeleteTag removes a tag and returns the removed value.
func (s *ServiceImpl) DeleteTag(ctx context.Context, guildID models.GuildID, name string) (*models.Tag, error) {
	partition := models.PartitionFor(guildID)

	t, err := s.repo.Delete(ctx, partition, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag removed", "partition", partition, "tag", name)
	return t, nil
}
