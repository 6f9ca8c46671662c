package config

import (
	"fmt"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host           string        `yaml:"host" env:"MEMO_HTTP_HOST" env-default:"0.0.0.0"`
	Port           int           `yaml:"port" env:"MEMO_HTTP_PORT" env-default:"8081"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"MEMO_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"MEMO_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"MEMO_HTTP_REQUEST_TIMEOUT" env-default:"5s"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
