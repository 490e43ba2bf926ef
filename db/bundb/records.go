package bundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel/attribute"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

var _ shared.RecordStore = (*Service)(nil)

// pgUniqueViolation is the Postgres error code for duplicate keys.
const pgUniqueViolation = "23505"

func (s *Service) GetRecord(ctx context.Context, partition, collection, key string) ([]byte, error) {
	var value []byte
	err := s.withRetry(ctx, "RecordStore.GetRecord", func(ctx context.Context) error {
		rec := new(StoredRecord)
		err := s.db.NewSelect().
			Model(rec).
			Where("partition = ? AND collection = ? AND record_key = ?", partition, collection, key).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrNotFound
			}
			return err
		}
		value = rec.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Service) ListRecords(ctx context.Context, partition, collection string) ([][]byte, error) {
	var values [][]byte
	err := s.withRetry(ctx, "RecordStore.ListRecords", func(ctx context.Context) error {
		var recs []StoredRecord
		err := s.db.NewSelect().
			Model(&recs).
			Where("partition = ? AND collection = ?", partition, collection).
			Order("record_key ASC").
			Scan(ctx)
		if err != nil {
			return err
		}
		values = make([][]byte, 0, len(recs))
		for _, rec := range recs {
			values = append(values, rec.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Service) CreateRecord(ctx context.Context, partition, collection, key string, value []byte) error {
	return s.withRetry(ctx, "RecordStore.CreateRecord", func(ctx context.Context) error {
		rec := &StoredRecord{
			Partition:  partition,
			Collection: collection,
			Key:        key,
			Value:      value,
			UpdatedAt:  time.Now().UTC(),
		}
		_, err := s.db.NewInsert().Model(rec).Exec(ctx)
		if isUniqueViolation(err) {
			return models.ErrAlreadyExists
		}
		return err
	})
}

func (s *Service) UpdateRecord(ctx context.Context, partition, collection, key string, value []byte) error {
	return s.withRetry(ctx, "RecordStore.UpdateRecord", func(ctx context.Context) error {
		res, err := s.db.NewUpdate().
			Model((*StoredRecord)(nil)).
			Set("value = ?", value).
			Set("updated_at = ?", time.Now().UTC()).
			Where("partition = ? AND collection = ? AND record_key = ?", partition, collection, key).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func (s *Service) DeleteRecord(ctx context.Context, partition, collection, key string) ([]byte, error) {
	var value []byte
	err := s.withRetry(ctx, "RecordStore.DeleteRecord", func(ctx context.Context) error {
		rec := new(StoredRecord)
		err := s.db.NewDelete().
			Model(rec).
			Where("partition = ? AND collection = ? AND record_key = ?", partition, collection, key).
			Returning("value").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrNotFound
			}
			return err
		}
		value = rec.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Service) DeleteAll(ctx context.Context, partition, collection string) ([][]byte, error) {
	var values [][]byte
	err := s.withRetry(ctx, "RecordStore.DeleteAll", func(ctx context.Context) error {
		var recs []StoredRecord
		err := s.db.NewDelete().
			Model((*StoredRecord)(nil)).
			Where("partition = ? AND collection = ?", partition, collection).
			Returning("value").
			Scan(ctx, &recs)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		values = make([][]byte, 0, len(recs))
		for _, rec := range recs {
			values = append(values, rec.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// withRetry runs op with a bounded timeout, retrying transport failures up to
// maxAttempts before surfacing ErrStoreUnavailable. Domain errors from the
// models taxonomy pass through untouched.
func (s *Service) withRetry(ctx context.Context, name string, op func(context.Context) error) (err error) {
	ctx, span := s.tracer.Start(ctx, name)
	defer func() {
		if err != nil && !isDomainErr(err) {
			span.RecordError(err)
		}
		span.End()
	}()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		err := op(opCtx)
		cancel()

		if err == nil || isDomainErr(err) {
			return err
		}

		lastErr = err
		s.logger.Warn("store operation failed",
			"operation", name,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	span.SetAttributes(attribute.Int("attempts", maxAttempts))
	return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, lastErr)
}

func isDomainErr(err error) bool {
	return errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrAlreadyExists)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return false
}
