package credentials

import (
	"context"
	"database/sql"

	"github.com/phoneshop/posclient/internal/dbx"
)

// SQLiteStorage reads credentials directly and applies write batches in a
// single transaction, so a crash never leaves a half-written session.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return NewSQLiteRepository(s.db).Get(ctx, key)
}

// Update runs fn against a repository bound to one transaction.
func (s *SQLiteStorage) Update(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
}
