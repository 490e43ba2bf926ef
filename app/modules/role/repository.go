package role

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// RepositoryImpl stores role bindings keyed by emote identity and the role
// message under the fixed singleton key.
type RepositoryImpl struct {
	Store shared.RecordStore
}

var _ Repository = (*RepositoryImpl)(nil)

func (r *RepositoryImpl) AddBinding(ctx context.Context, partition string, ur models.UserRole) error {
	value, err := json.Marshal(ur)
	if err != nil {
		return fmt.Errorf("failed to marshal role binding: %w", err)
	}
	return r.Store.CreateRecord(ctx, partition, models.CollectionRoles, ur.Emote.Key(), value)
}

func (r *RepositoryImpl) ListBindings(ctx context.Context, partition string) ([]models.UserRole, error) {
	values, err := r.Store.ListRecords(ctx, partition, models.CollectionRoles)
	if err != nil {
		return nil, err
	}
	return unmarshalBindings(values)
}

func (r *RepositoryImpl) DeleteBinding(ctx context.Context, partition, emoteKey string) (*models.UserRole, error) {
	value, err := r.Store.DeleteRecord(ctx, partition, models.CollectionRoles, emoteKey)
	if err != nil {
		return nil, err
	}
	ur := new(models.UserRole)
	if err := json.Unmarshal(value, ur); err != nil {
		return nil, fmt.Errorf("failed to unmarshal removed role binding: %w", err)
	}
	return ur, nil
}

func (r *RepositoryImpl) DeleteAllBindings(ctx context.Context, partition string) ([]models.UserRole, error) {
	values, err := r.Store.DeleteAll(ctx, partition, models.CollectionRoles)
	if err != nil {
		return nil, err
	}
	return unmarshalBindings(values)
}

func (r *RepositoryImpl) GetRoleMessage(ctx context.Context, partition string) (*models.RoleMessage, error) {
	value, err := r.Store.GetRecord(ctx, partition, models.CollectionRoleMessage, models.SingletonKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rm := new(models.RoleMessage)
	if err := json.Unmarshal(value, rm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role message: %w", err)
	}
	return rm, nil
}

func (r *RepositoryImpl) SaveRoleMessage(ctx context.Context, partition string, rm models.RoleMessage) error {
	value, err := json.Marshal(rm)
	if err != nil {
		return fmt.Errorf("failed to marshal role message: %w", err)
	}

	err = r.Store.UpdateRecord(ctx, partition, models.CollectionRoleMessage, models.SingletonKey, value)
	if errors.Is(err, models.ErrNotFound) {
		return r.Store.CreateRecord(ctx, partition, models.CollectionRoleMessage, models.SingletonKey, value)
	}
	return err
}

func unmarshalBindings(values [][]byte) ([]models.UserRole, error) {
	bindings := make([]models.UserRole, 0, len(values))
	for _, value := range values {
		var ur models.UserRole
		if err := json.Unmarshal(value, &ur); err != nil {
			return nil, fmt.Errorf("failed to unmarshal role binding: %w", err)
		}
		bindings = append(bindings, ur)
	}
	return bindings, nil
}
