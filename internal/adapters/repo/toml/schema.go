package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Profiles []profileSchema `toml:"profiles"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profiles schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type profileSchema struct {
	Name           string   `toml:"name"`
	Addresses      []string `toml:"addresses"`
	MinSize        *int     `toml:"min_size,omitempty"`
	MaxSize        *int     `toml:"max_size,omitempty"`
	ConnectTimeout string   `toml:"connect_timeout,omitempty"`
	IdleTime       string   `toml:"idle_time,omitempty"`
	Username       string   `toml:"username"`
	PasswordRef    string   `toml:"password_ref,omitempty"`
	Space          string   `toml:"space,omitempty"`
}
