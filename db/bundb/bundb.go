// Package bundb implements the record store on Postgres through bun. Records
// are whole JSON documents keyed by (partition, collection, key); the
// partition rides along in every statement, so concurrent operations for
// different guilds never share mutable session state.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel/trace"
)

const (
	// opTimeout bounds every store round trip so a dead connection surfaces
	// as ErrStoreUnavailable instead of hanging an event handler.
	opTimeout = 5 * time.Second

	// maxAttempts bounds retries on transport failures.
	maxAttempts = 3
)

// StoredRecord is the single table backing all record collections.
type StoredRecord struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	Partition  string    `bun:"partition,pk"`
	Collection string    `bun:"collection,pk"`
	Key        string    `bun:"record_key,pk"`
	Value      []byte    `bun:"value,type:jsonb,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Service owns the bun connection pool and exposes the RecordStore.
type Service struct {
	db     *bun.DB
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService connects to Postgres and verifies the connection.
func NewService(ctx context.Context, dsn string, logger *slog.Logger, tracer trace.Tracer) (*Service, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*StoredRecord)(nil))

	logger.Info("connected to record store")

	return &Service{db: db, logger: logger, tracer: tracer}, nil
}

// Migrate creates the records table if it does not exist.
func (s *Service) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*StoredRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	s.logger.Info("records table ready")
	return nil
}

// DB returns the underlying connection pool.
func (s *Service) DB() *bun.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Service) Close() error {
	return s.db.Close()
}
