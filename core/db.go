package core

import "context"

// DBExecutor runs read queries; satisfied by *sqlx.DB and *sqlx.Tx.
type DBExecutor interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
