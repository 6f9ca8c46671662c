package config

import (
	"fmt"
	"time"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `yaml:"host" env:"MEMO_POSTGRES_HOST" env-default:"0.0.0.0"`
	Port          int    `yaml:"port" env:"MEMO_POSTGRES_PORT" env-default:"5434"`
	User          string `yaml:"user" env:"MEMO_POSTGRES_USER" env-default:"postgres"`
	Password      string `yaml:"password" env:"MEMO_POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `yaml:"database" env:"MEMO_POSTGRES_DB" env-default:"memo"`
	MinConn       int    `yaml:"min_conn" env:"MEMO_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int    `yaml:"max_conn" env:"MEMO_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `yaml:"migrations_dir" env:"MEMO_MIGRATIONS_DIR" env-default:"./migrations/memo"`
	// AppName попадает в pg_stat_activity.
	AppName     string        `yaml:"app_name" env:"MEMO_POSTGRES_APP_NAME" env-default:"charmemo"`
	HealthCheck time.Duration `yaml:"health_check" env:"MEMO_POSTGRES_HEALTH_CHECK" env-default:"30s"`
}

// GetDSN возвращает строку подключения к Postgres.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}
