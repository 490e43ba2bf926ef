package tag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// RepositoryImpl stores tags as whole JSON records keyed by tag name.
type RepositoryImpl struct {
	Store shared.RecordStore
}

var _ Repository = (*RepositoryImpl)(nil)

func (r *RepositoryImpl) Create(ctx context.Context, partition string, t models.Tag) error {
	value, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}
	return r.Store.CreateRecord(ctx, partition, models.CollectionTags, t.Name, value)
}

func (r *RepositoryImpl) Get(ctx context.Context, partition, name string) (*models.Tag, error) {
	value, err := r.Store.GetRecord(ctx, partition, models.CollectionTags, name)
	if err != nil {
		return nil, err
	}
	t := new(models.Tag)
	if err := json.Unmarshal(value, t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag %q: %w", name, err)
	}
	return t, nil
}

func (r *RepositoryImpl) List(ctx context.Context, partition string) ([]models.Tag, error) {
	values, err := r.Store.ListRecords(ctx, partition, models.CollectionTags)
	if err != nil {
		return nil, err
	}
	tags := make([]models.Tag, 0, len(values))
	for _, value := range values {
		var t models.Tag
		if err := json.Unmarshal(value, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, partition, name string) (*models.Tag, error) {
	value, err := r.Store.DeleteRecord(ctx, partition, models.CollectionTags, name)
	if err != nil {
		return nil, err
	}
	t := new(models.Tag)
	if err := json.Unmarshal(value, t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal removed tag %q: %w", name, err)
	}
	return t, nil
}
