// Package redis provides the shared Redis client.
package redis

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Defaults used when the service config leaves a field empty.
const (
	DefaultHost     = "redis"
	DefaultPort     = 6379
	DefaultPoolSize = 10
	DefaultTimeout  = 5 * time.Second
)

var (
	ErrEmptyHost   = errors.New("redis host is empty")
	ErrInvalidPort = errors.New("redis port must be in 1..65535")
	ErrInvalidDB   = errors.New("redis db index must not be negative")
)

// Config holds Redis connection settings. Timeout bounds dial, read, write
// and the initial PING.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// DefaultConfig returns the settings used by docker-compose.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		PoolSize: DefaultPoolSize,
		Timeout:  DefaultTimeout,
	}
}

// Validate reports settings that go-redis would only reject at dial time.
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return ErrEmptyHost
	case c.Port <= 0 || c.Port > 65535:
		return ErrInvalidPort
	case c.DB < 0:
		return ErrInvalidDB
	}
	return nil
}

// Addr returns host:port, bracketing IPv6 hosts.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Config) poolSize() int {
	if c.PoolSize <= 0 {
		return DefaultPoolSize
	}
	return c.PoolSize
}
