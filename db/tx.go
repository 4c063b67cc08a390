package db

import (
	"context"
	"database/sql"
)

func NewTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	return db.BeginTx(ctx, nil)
}
