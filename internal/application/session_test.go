package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/nebula-graph-cli/internal/adapters/transport/graphtest"
	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAccessors(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer(graphtest.WithTimeZone("Asia/Shanghai", 28800))
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(context.Background(), "root", "nebula", false)
	require.NoError(t, err)
	defer session.Close(context.Background())

	assert.NotZero(t, session.ID())
	assert.Equal(t, "root", session.Username())
	assert.Equal(t, "Asia/Shanghai", session.TimeZoneName())
	assert.Equal(t, int32(28800), session.OffsetSeconds())
	assert.False(t, session.RetryConnect())
}

func TestSessionCloseSignsOutAndGivesBackExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(ctx, "root", "nebula", true)
	require.NoError(t, err)
	require.Equal(t, 1, srv.ActiveSessions())

	require.NoError(t, session.Close(ctx))
	require.NoError(t, session.Close(ctx))

	assert.Equal(t, 1, srv.Signouts())
	assert.Zero(t, srv.ActiveSessions())
	assert.Equal(t, 1, pool.Len())
	assert.Zero(t, pool.Stats().Borrowed)

	_, err = session.Execute(ctx, "RETURN 1")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.ErrorIs(t, session.Signout(ctx), domain.ErrSessionClosed)
}

func TestSessionCloseSignsOutWithCanceledContext(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	ctx, cancel := context.WithCancel(context.Background())
	session, err := pool.GetSession(ctx, "root", "nebula", true)
	require.NoError(t, err)
	cancel()

	require.NoError(t, session.Close(ctx))
	assert.Equal(t, 1, srv.Signouts())
	assert.Equal(t, 1, pool.Len())
}

func TestSessionWithoutRetryConnectRetiresConnection(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 2, addrA))

	session, err := pool.GetSession(context.Background(), "root", "nebula", false)
	require.NoError(t, err)
	require.NoError(t, session.Close(context.Background()))

	assert.Zero(t, pool.Len())
	assert.Zero(t, pool.Stats().Total)
	assert.Zero(t, srv.LiveConns())
	assert.Equal(t, 1, srv.Signouts())
}

func TestSessionExecuteReturnsServerFailureWithResult(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(context.Background(), "root", "nebula", true)
	require.NoError(t, err)
	defer session.Close(context.Background())

	result, err := session.Execute(context.Background(), "GO FROM nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrorCodeSyntaxError)
	assert.NotErrorIs(t, err, domain.ErrorCodeRPCFailure)
	assert.Equal(t, domain.ErrorCodeSyntaxError, result.Code)
	assert.Contains(t, result.ErrorMsg, "GO")

	result, err = session.Execute(context.Background(), "RETURN 42")
	require.NoError(t, err)
	assert.Equal(t, domain.IntValue(42), result.Data.Rows[0].Values[0])
}

func TestSessionTransportFailureClosesConnectionOnRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := mocks.NewMockTransport(t)
	tc := mocks.NewMockTransportConn(t)
	transport.EXPECT().Open(mockAnyContext(), addrA).Return(tc, nil).Once()

	pool, err := NewPool(ctx, poolConfig(1, 1, addrA), transport)
	require.NoError(t, err)

	tc.EXPECT().Authenticate(mockAnyContext(), "root", "nebula").
		Return(domain.AuthResult{Code: domain.ErrorCodeSucceeded, SessionID: 9}, nil).Once()
	session, err := pool.GetSession(ctx, "root", "nebula", true)
	require.NoError(t, err)

	broken := errors.New("broken pipe")
	tc.EXPECT().Execute(mockAnyContext(), int64(9), "RETURN 1").Return(domain.ExecutionResult{}, broken).Once()
	_, err = session.Execute(ctx, "RETURN 1")
	assert.ErrorIs(t, err, domain.ErrorCodeRPCFailure)
	assert.ErrorIs(t, err, broken)

	tc.EXPECT().Signout(mockAnyContext(), int64(9)).Return(broken).Once()
	tc.EXPECT().Close().Return(nil).Once()

	err = session.Close(ctx)
	assert.ErrorIs(t, err, broken)
	assert.Zero(t, pool.Stats().Total)
	require.NoError(t, pool.Close())
}

func TestWithSessionReclaimsOnError(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	boom := errors.New("boom")
	err := WithSession(context.Background(), pool, "root", "nebula", true, func(*Session) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, srv.Signouts())
	assert.Equal(t, 1, pool.Len())
}

func TestWithSessionReclaimsOnPanic(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithSession(context.Background(), pool, "root", "nebula", true, func(*Session) error {
			panic("boom")
		})
	})

	assert.Equal(t, 1, srv.Signouts())
	assert.Equal(t, 1, pool.Len())
	assert.Zero(t, pool.Stats().Borrowed)
}

func TestWithSessionPropagatesAcquireError(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	called := false
	err := WithSession(context.Background(), pool, "root", "bad", true, func(*Session) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrorCodeBadUsernamePassword)
	assert.False(t, called)
}

func TestSessionExecuteCanceledContextKeepsConnection(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(context.Background(), "root", "nebula", true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = session.Execute(ctx, "RETURN 1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrorCodeRPCFailure)

	require.NoError(t, session.Close(context.Background()))
	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, 1, srv.LiveConns())
	assert.Equal(t, 1, srv.Signouts())
}

func TestSessionSignoutThenCloseSignsOutOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(ctx, "root", "nebula", true)
	require.NoError(t, err)

	require.NoError(t, session.Signout(ctx))
	require.NoError(t, session.Signout(ctx))
	require.NoError(t, session.Close(ctx))

	assert.Equal(t, 1, srv.Signouts())
	assert.Zero(t, srv.ActiveSessions())
	assert.Equal(t, 1, pool.Len())
}

func TestSessionCanceledSignoutIsRetriedOnClose(t *testing.T) {
	t.Parallel()

	srv := graphtest.NewServer()
	pool := newTestPool(t, srv, poolConfig(1, 1, addrA))

	session, err := pool.GetSession(context.Background(), "root", "nebula", true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, session.Signout(ctx), context.Canceled)
	assert.Zero(t, srv.Signouts())

	require.NoError(t, session.Close(ctx))
	assert.Equal(t, 1, srv.Signouts())
	assert.Zero(t, srv.ActiveSessions())
}
