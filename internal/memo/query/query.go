// Package query is the typed access layer over the memo persistence port.
//
// Every operation validates its input before touching the port, applies the
// access mode of the entity (public catalog or owner scope) and returns either
// a value or an *entities.Error. Nothing here degrades, retries or swallows a
// failure: that is left to the service layer.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"charmemo/internal/memo/domain/entities"
	"charmemo/internal/memo/ports/repositories"
	"charmemo/pkg/identity"
	"charmemo/pkg/logger"
)

// Repositories bundles the persistence handles the query layer is built on.
type Repositories struct {
	Characters   repositories.CharacterRepository
	Categories   repositories.CategoryRepository
	Settings     repositories.SettingRepository
	MemoItems    repositories.MemoItemRepository
	MemoContents repositories.MemoContentRepository
}

// Queries exposes the typed operations of the memo data model.
type Queries struct {
	characters   repositories.CharacterRepository
	categories   repositories.CategoryRepository
	settings     repositories.SettingRepository
	memoItems    repositories.MemoItemRepository
	memoContents repositories.MemoContentRepository
}

// New builds the query layer over the given repositories.
func New(repos Repositories) *Queries {
	return &Queries{
		characters:   repos.Characters,
		categories:   repos.Categories,
		settings:     repos.Settings,
		memoItems:    repos.MemoItems,
		memoContents: repos.MemoContents,
	}
}

func methodLog(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("layer", "query"), zap.String("method", method))
}

// requireOwner fails fast when an owner-scoped call carries no identity.
func requireOwner(ctx context.Context, op string) (string, error) {
	owner, err := identity.OwnerFromContext(ctx)
	if err != nil {
		return "", entities.NewError(entities.KindValidation, op, err)
	}
	return owner, nil
}

// propagate passes typed errors through and classifies anything else as transport.
func propagate(op string, err error) error {
	if _, ok := entities.KindOf(err); ok {
		return err
	}
	return entities.NewError(entities.KindTransport, op, err)
}

func malformed(op, format string, args ...any) error {
	return entities.NewError(entities.KindTransport, op, fmt.Errorf("malformed record: "+format, args...))
}

func notFound(op, what, id string) error {
	return entities.NewError(entities.KindNotFound, op, fmt.Errorf("%s %s", what, id))
}

func requireID(op, field, id string) error {
	if id == "" {
		return entities.Validationf(op, "%s is required", field)
	}
	return nil
}

func requireKeyPart(op, field, id string) error {
	if !entities.ValidKeyPart(id) {
		return entities.Validationf(op, "%s must be non-empty and must not contain %q", field, entities.SortKeySeparator)
	}
	return nil
}

func requireVersion(op string, version int) error {
	if version < entities.InitialVersion {
		return entities.Validationf(op, "expected version must be >= %d, got %d", entities.InitialVersion, version)
	}
	return nil
}

func checkOwner(op, kind, id, got, want string) error {
	if got != want {
		return malformed(op, "%s %s belongs to another owner", kind, id)
	}
	return nil
}
