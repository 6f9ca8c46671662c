package config

import "time"

// DefaultShutdownTimeout используется, если таймаут не задан или не положителен.
const DefaultShutdownTimeout = 5 * time.Second

// ShutdownConfig задает, сколько ждать завершения запросов и закрытия хранилищ.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"MEMO_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetTimeout возвращает таймаут завершения работы.
func (c *ShutdownConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultShutdownTimeout
	}
	return c.Timeout
}
