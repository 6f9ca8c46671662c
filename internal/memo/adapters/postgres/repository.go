// Package postgres implements the memo persistence port on PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"charmemo/internal/memo/ports/repositories"
)

// DBTX is the part of *pgxpool.Pool the repositories use. pgxmock pools satisfy it.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// TxBeginner is a DBTX that can open transactions.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RepositoryFactory creates repositories sharing one connection pool.
type RepositoryFactory struct {
	db DBTX
}

// NewRepositoryFactory creates a RepositoryFactory over db.
func NewRepositoryFactory(db DBTX) *RepositoryFactory {
	return &RepositoryFactory{db: db}
}

// CharacterRepository returns the catalog repository.
func (f *RepositoryFactory) CharacterRepository() repositories.CharacterRepository {
	return NewCharacterRepository(f.db)
}

// CategoryRepository returns the category repository.
func (f *RepositoryFactory) CategoryRepository() repositories.CategoryRepository {
	return NewCategoryRepository(f.db)
}

// SettingRepository returns the character setting repository.
func (f *RepositoryFactory) SettingRepository() repositories.SettingRepository {
	return NewSettingRepository(f.db)
}

// MemoItemRepository returns the memo item repository.
func (f *RepositoryFactory) MemoItemRepository() repositories.MemoItemRepository {
	return NewMemoItemRepository(f.db)
}

// MemoContentRepository returns the memo content repository.
func (f *RepositoryFactory) MemoContentRepository() repositories.MemoContentRepository {
	return NewMemoContentRepository(f.db)
}
