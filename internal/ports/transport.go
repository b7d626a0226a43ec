package ports

import (
	"context"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

// Transport opens unauthenticated connections to a graph server endpoint.
type Transport interface {
	Open(ctx context.Context, address string) (TransportConn, error)
}

// TransportConn is one network handle. A returned error always means the RPC
// itself failed; server-side failures travel in the result codes.
type TransportConn interface {
	Authenticate(ctx context.Context, username, password string) (domain.AuthResult, error)
	Execute(ctx context.Context, sessionID int64, stmt string) (domain.ExecutionResult, error)
	Signout(ctx context.Context, sessionID int64) error
	Close() error
}
