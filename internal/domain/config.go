package domain

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	DefaultMinPoolSize = 2
	DefaultMaxPoolSize = 10
)

// PoolConfig is fixed once a pool is built from it.
type PoolConfig struct {
	Addresses []string
	MinSize   int
	MaxSize   int
	// ConnectTimeout bounds the transport handshake. Zero means no bound.
	ConnectTimeout time.Duration
	// IdleTimeout is carried for callers; the pool does not evict on it.
	IdleTimeout time.Duration
	Username    string
	Password    string
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinSize: DefaultMinPoolSize,
		MaxSize: DefaultMaxPoolSize,
	}
}

func (c PoolConfig) Validate() error {
	if len(c.Addresses) == 0 {
		return ErrNoAddresses
	}
	for _, address := range c.Addresses {
		if strings.TrimSpace(address) == "" {
			return fmt.Errorf("%w: empty address", ErrNoAddresses)
		}
	}
	if c.MinSize < 0 || c.MaxSize < 0 {
		return fmt.Errorf("pool sizes must not be negative (min %d, max %d)", c.MinSize, c.MaxSize)
	}
	if c.MinSize > c.MaxSize {
		return fmt.Errorf("%w (min %d, max %d)", ErrInvalidPoolSize, c.MinSize, c.MaxSize)
	}

	return nil
}

// Clone returns a copy that shares no slice storage with c.
func (c PoolConfig) Clone() PoolConfig {
	clone := c
	clone.Addresses = append([]string(nil), c.Addresses...)
	return clone
}

// ParseConnURL parses the "user:password@host:port[,host:port]/space" shorthand.
// The space part is optional.
func ParseConnURL(raw string) (Profile, error) {
	trimmed := strings.TrimSpace(raw)
	at := strings.LastIndex(trimmed, "@")
	if at <= 0 {
		return Profile{}, fmt.Errorf("connection url %q: missing credentials", raw)
	}

	userInfo, rest := trimmed[:at], trimmed[at+1:]
	username, password, ok := strings.Cut(userInfo, ":")
	if !ok || username == "" {
		return Profile{}, fmt.Errorf("connection url %q: expected user:password before '@'", raw)
	}

	hosts, space, _ := strings.Cut(rest, "/")
	addresses := make([]string, 0, 1)
	for _, host := range strings.Split(hosts, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(host); err != nil {
			return Profile{}, fmt.Errorf("connection url %q: invalid address %q: %w", raw, host, err)
		}
		addresses = append(addresses, host)
	}

	cfg := DefaultPoolConfig()
	cfg.Addresses = addresses
	cfg.Username = username
	cfg.Password = password
	if err := cfg.Validate(); err != nil {
		return Profile{}, fmt.Errorf("connection url %q: %w", raw, err)
	}

	return Profile{Name: "url", Pool: cfg, Space: strings.TrimSpace(space)}, nil
}
