package ports

import "context"

// SecretStore holds graph-server passwords keyed by credential reference
// (see domain.CredentialRef).
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
