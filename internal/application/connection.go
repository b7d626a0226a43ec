package application

import (
	"context"
	"errors"

	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
	"go.uber.org/atomic"
)

var connectionIDs = atomic.NewUint64(0)

// Connection is one authenticated-capable link to a single server address.
// It does no retrying of its own.
type Connection struct {
	id      uint64
	address string
	conn    ports.TransportConn

	broken  *atomic.Bool
	retired *atomic.Bool
	closed  *atomic.Bool
}

func OpenConnection(ctx context.Context, transport ports.Transport, address string) (*Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}

	tc, err := transport.Open(ctx, address)
	if err != nil {
		return nil, asTransportError("dial", address, err)
	}

	return &Connection{
		id:      connectionIDs.Inc(),
		address: address,
		conn:    tc,
		broken:  atomic.NewBool(false),
		retired: atomic.NewBool(false),
		closed:  atomic.NewBool(false),
	}, nil
}

func (c *Connection) ID() uint64 {
	return c.id
}

func (c *Connection) Address() string {
	return c.address
}

// Authenticate only returns an error when the request itself failed or ctx
// was already done. A rejected login is reported through AuthResult.Code.
//
// A done ctx is returned as is, without a *domain.TransportError: the request
// never left, so the connection stays usable.
func (c *Connection) Authenticate(ctx context.Context, username, password string) (domain.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuthResult{}, err
	}
	result, err := c.conn.Authenticate(ctx, username, password)
	if err != nil {
		c.broken.Store(true)
		return domain.AuthResult{Code: domain.ErrorCodeRPCFailure}, asTransportError("authenticate", c.address, err)
	}
	return result, nil
}

func (c *Connection) Execute(ctx context.Context, sessionID int64, stmt string) (domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExecutionResult{}, err
	}
	result, err := c.conn.Execute(ctx, sessionID, stmt)
	if err != nil {
		c.broken.Store(true)
		return domain.ExecutionResult{Code: domain.ErrorCodeRPCFailure}, asTransportError("execute", c.address, err)
	}
	return result, nil
}

func (c *Connection) Signout(ctx context.Context, sessionID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.Signout(ctx, sessionID); err != nil {
		c.broken.Store(true)
		return asTransportError("signout", c.address, err)
	}
	return nil
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// Broken reports whether a request on this connection failed in transit.
func (c *Connection) Broken() bool {
	return c.broken.Load()
}

// Retire marks the connection so the pool closes it instead of reusing it.
func (c *Connection) Retire() {
	c.retired.Store(true)
}

func (c *Connection) Retired() bool {
	return c.retired.Load()
}

// isTransportError reports whether err came from a request that reached the
// transport and failed there.
func isTransportError(err error) bool {
	var transportErr *domain.TransportError
	return errors.As(err, &transportErr)
}

func asTransportError(op, address string, err error) error {
	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return &domain.TransportError{Op: op, Address: address, Err: err}
}
