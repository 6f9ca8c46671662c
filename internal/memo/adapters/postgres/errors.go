package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

// PostgreSQL error codes mapped to error kinds.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// classify converts a driver error into an *entities.Error.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return entities.NewError(entities.KindVersionConflict, op,
				fmt.Errorf("duplicate record (%s): %w", pgErr.ConstraintName, err))
		case codeForeignKeyViolation:
			return entities.NewError(entities.KindValidation, op,
				fmt.Errorf("references unknown record (%s): %w", pgErr.ConstraintName, err))
		case codeCheckViolation, codeNotNullViolation:
			return entities.NewError(entities.KindValidation, op, err)
		}
	}
	return entities.NewError(entities.KindTransport, op, err)
}

// ownerFrom returns the authenticated owner for an owner-scoped statement.
func ownerFrom(ctx context.Context, op string) (string, error) {
	owner, err := identity.OwnerFromContext(ctx)
	if err != nil {
		logger.Log(ctx).Debug(ctx, "owner-scoped call without identity", zap.String("method", op))
		return "", entities.NewError(entities.KindValidation, op, err)
	}
	return owner, nil
}

// missOrConflict explains why a versioned write matched no row: the record is
// gone (or belongs to someone else), or its version moved on.
func missOrConflict(ctx context.Context, db DBTX, op, probe, id, owner string) error {
	var current int
	err := db.QueryRow(ctx, probe, id, owner).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.NewError(entities.KindNotFound, op, fmt.Errorf("id %s", id))
		}
		return classify(op, err)
	}
	return entities.NewError(entities.KindVersionConflict, op, fmt.Errorf("id %s is at version %d", id, current))
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
