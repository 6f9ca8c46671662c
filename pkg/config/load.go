// Package config loads configuration from an optional file and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"charmemo/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"

	// ErrFailedLoadConfiguration prefixes every load error.
	ErrFailedLoadConfiguration = "failed to load configuration"

	// ErrInvalidConfiguration prefixes errors returned by Validate.
	ErrInvalidConfiguration = "invalid configuration"

	attrService = "service"
	attrPath    = "path"
)

// Validator is implemented by configs that check cross-field constraints after loading.
type Validator interface {
	Validate() error
}

// Load fills a T from the optional file at path and then from the environment.
// A missing file is not an error: environment variables and env-default tags apply.
// If *T implements Validator it is checked before returning.
func Load[T any](ctx context.Context, serviceName, path string) (*T, error) {
	log := logger.Log(ctx)

	log.Info(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, path))

	var cfg T

	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfiguration, err)
	}

	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			log.Error(ctx, ErrInvalidConfiguration,
				zap.String(attrService, serviceName),
				zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrInvalidConfiguration, err)
		}
	}

	log.Info(ctx, msgConfigurationLoaded, zap.String(attrService, serviceName))

	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
