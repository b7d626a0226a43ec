package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/go-kit/log/level"
	"go.uber.org/atomic"
)

// Session owns one borrowed connection for its whole life. Close must be
// called, directly or through WithSession, to hand the connection back.
type Session struct {
	id            int64
	conn          *Connection
	pool          *ConnectionPool
	username      string
	timeZoneName  string
	offsetSeconds int32
	retryConnect  bool

	closed    *atomic.Bool
	signedOut *atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newSession(pool *ConnectionPool, conn *Connection, auth domain.AuthResult, username string, retryConnect bool) *Session {
	return &Session{
		id:            auth.SessionID,
		conn:          conn,
		pool:          pool,
		username:      username,
		timeZoneName:  auth.TimeZoneName,
		offsetSeconds: auth.TimeZoneOffsetSeconds,
		retryConnect:  retryConnect,
		closed:        atomic.NewBool(false),
		signedOut:     atomic.NewBool(false),
	}
}

func (s *Session) ID() int64 {
	return s.id
}

func (s *Session) Username() string {
	return s.username
}

// TimeZoneName is empty when the server zone is not a named one.
func (s *Session) TimeZoneName() string {
	return s.timeZoneName
}

func (s *Session) OffsetSeconds() int32 {
	return s.offsetSeconds
}

func (s *Session) RetryConnect() bool {
	return s.retryConnect
}

func (s *Session) Address() string {
	return s.conn.Address()
}

// Execute runs stmt in this session. A transport failure matches
// domain.ErrorCodeRPCFailure. A statement the server refused returns the
// result together with an error matching its code. A ctx that is already
// done is returned wrapped and does not cost the session its connection.
func (s *Session) Execute(ctx context.Context, stmt string) (domain.ExecutionResult, error) {
	if s.closed.Load() {
		return domain.ExecutionResult{}, domain.ErrSessionClosed
	}

	start := time.Now()
	result, err := s.conn.Execute(ctx, s.id, stmt)
	if err != nil && !isTransportError(err) {
		s.observe("canceled", start)
		return result, fmt.Errorf("execute: %w", err)
	}
	if err != nil {
		s.observe("rpc_failure", start)
		return result, fmt.Errorf("execute: %w: %w", domain.ErrorCodeRPCFailure, err)
	}
	if serverErr := result.Err(); serverErr != nil {
		s.observe("server_error", start)
		return result, fmt.Errorf("execute: %w", serverErr)
	}

	s.observe("success", start)
	return result, nil
}

func (s *Session) observe(outcome string, start time.Time) {
	s.pool.metrics.executeDurations.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Signout ends the server-side session without returning the connection.
// Close does not sign out again once a signout request has been sent.
func (s *Session) Signout(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrSessionClosed
	}
	return s.signout(ctx)
}

func (s *Session) signout(ctx context.Context) error {
	if s.signedOut.Load() {
		return nil
	}

	err := s.conn.Signout(ctx, s.id)
	if err != nil && !isTransportError(err) {
		return fmt.Errorf("signout: %w", err)
	}
	s.signedOut.Store(true)
	if err != nil {
		return fmt.Errorf("signout: %w: %w", domain.ErrorCodeRPCFailure, err)
	}
	return nil
}

// Close signs out and hands the connection back to the pool. Only the first
// call does anything; a failed signout is logged and returned but the
// connection is handed back regardless.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		if err := s.signout(context.WithoutCancel(ctx)); err != nil {
			level.Warn(s.pool.logger).Log("msg", "signout failed", "session", s.id, "address", s.conn.Address(), "err", err)
			s.closeErr = err
		}
		if !s.retryConnect {
			s.conn.Retire()
		}
		s.pool.GiveBack(s.conn)
	})
	return s.closeErr
}

// SessionProvider hands out authenticated sessions.
type SessionProvider interface {
	GetSession(ctx context.Context, username, password string, retryConnect bool) (*Session, error)
}

var _ SessionProvider = (*ConnectionPool)(nil)

// WithSession runs fn inside a fresh session and always closes it, including
// when fn panics. Close errors are logged by the session and not returned.
func WithSession(ctx context.Context, pool SessionProvider, username, password string, retryConnect bool, fn func(*Session) error) error {
	session, err := pool.GetSession(ctx, username, password, retryConnect)
	if err != nil {
		return err
	}
	defer func() {
		_ = session.Close(ctx)
	}()

	return fn(session)
}
