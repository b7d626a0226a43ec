package domain

import (
	"fmt"
	"strings"
)

type Profile struct {
	Name string
	Pool PoolConfig
	// PasswordRef points to a secret-store entry used when Pool.Password is empty.
	PasswordRef string
	Space       string
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Pool.Username) == "" {
		return fmt.Errorf("username is required")
	}

	return p.Pool.Validate()
}

// CredentialRef is the default secret-store key for a profile user.
func CredentialRef(profile, username string) string {
	return fmt.Sprintf("nebula/%s/%s", strings.TrimSpace(profile), strings.TrimSpace(username))
}
