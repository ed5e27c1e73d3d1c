package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// PostgresStore inserts every object inside one transaction.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if err := validateIdentifier("table name", table); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, table: table}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	recs := toRecords(className, objects)
	if err := s.insert(ctx, recs); err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}
	return toResults(recs), nil
}

func (s *PostgresStore) insert(ctx context.Context, recs []record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	table := pq.QuoteIdentifier(s.table)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		class_name TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`, table)
	if _, err = tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to ensure table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, class_name, name, created_at) VALUES ($1, $2, $3, $4)`, table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		if _, err = stmt.ExecContext(ctx, r.ID, r.ClassName, r.Name, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert object %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
