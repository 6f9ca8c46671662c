package config

import "time"

// CatalogConfig управляет кэшированием публичного каталога персонажей.
type CatalogConfig struct {
	CacheEnabled bool          `yaml:"cache_enabled" env:"MEMO_CATALOG_CACHE_ENABLED" env-default:"true"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"MEMO_CATALOG_CACHE_TTL" env-default:"10m"`
	// Breaker открывается после стольких ошибок кэша подряд.
	BreakerThreshold int           `yaml:"breaker_threshold" env:"MEMO_CATALOG_BREAKER_THRESHOLD" env-default:"5"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"MEMO_CATALOG_BREAKER_TIMEOUT" env-default:"30s"`
}
