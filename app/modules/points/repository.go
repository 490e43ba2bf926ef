package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// RepositoryImpl stores the points configuration under the singleton key and
// user point records keyed by Discord user ID.
type RepositoryImpl struct {
	Store shared.RecordStore
}

var _ Repository = (*RepositoryImpl)(nil)

func (r *RepositoryImpl) GetConfig(ctx context.Context, partition string) (*models.PointsConfig, error) {
	value, err := r.Store.GetRecord(ctx, partition, models.CollectionPointsConfig, models.SingletonKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	cfg := new(models.PointsConfig)
	if err := json.Unmarshal(value, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal points config: %w", err)
	}
	return cfg, nil
}

func (r *RepositoryImpl) SaveConfig(ctx context.Context, partition string, cfg models.PointsConfig) error {
	value, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal points config: %w", err)
	}

	err = r.Store.UpdateRecord(ctx, partition, models.CollectionPointsConfig, models.SingletonKey, value)
	if errors.Is(err, models.ErrNotFound) {
		return r.Store.CreateRecord(ctx, partition, models.CollectionPointsConfig, models.SingletonKey, value)
	}
	return err
}

func (r *RepositoryImpl) GetUser(ctx context.Context, partition string, userID models.UserID) (*models.UserPoints, error) {
	value, err := r.Store.GetRecord(ctx, partition, models.CollectionUsers, string(userID))
	if err != nil {
		return nil, err
	}
	up := new(models.UserPoints)
	if err := json.Unmarshal(value, up); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user points: %w", err)
	}
	return up, nil
}

func (r *RepositoryImpl) CreateUser(ctx context.Context, partition string, up models.UserPoints) error {
	value, err := json.Marshal(up)
	if err != nil {
		return fmt.Errorf("failed to marshal user points: %w", err)
	}
	return r.Store.CreateRecord(ctx, partition, models.CollectionUsers, string(up.DiscordID), value)
}

func (r *RepositoryImpl) UpdateUser(ctx context.Context, partition string, up models.UserPoints) error {
	value, err := json.Marshal(up)
	if err != nil {
		return fmt.Errorf("failed to marshal user points: %w", err)
	}
	return r.Store.UpdateRecord(ctx, partition, models.CollectionUsers, string(up.DiscordID), value)
}

func (r *RepositoryImpl) ListUsers(ctx context.Context, partition string) ([]models.UserPoints, error) {
	values, err := r.Store.ListRecords(ctx, partition, models.CollectionUsers)
	if err != nil {
		return nil, err
	}
	users := make([]models.UserPoints, 0, len(values))
	for _, value := range values {
		var up models.UserPoints
		if err := json.Unmarshal(value, &up); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user points: %w", err)
		}
		users = append(users, up)
	}
	return users, nil
}
