package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
	"github.com/eapache/queue"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Idle     int
	Borrowed int
	// Total counts idle, borrowed and in-flight dials.
	Total      int
	Max        int
	PerAddress map[string]int
}

// ConnectionPool keeps up to MaxSize connections and lends them out through
// sessions. Network calls never run while the pool lock is held.
type ConnectionPool struct {
	cfg       domain.PoolConfig
	transport ports.Transport
	selector  *EndpointSelector
	logger    log.Logger
	registry  prometheus.Registerer
	metrics   *poolMetrics

	mu         sync.Mutex
	idle       *queue.Queue
	lent       map[uint64]*Connection
	total      int
	dialing    int
	perAddress map[string]int
	closed     bool
}

type PoolOption func(*ConnectionPool)

func WithLogger(logger log.Logger) PoolOption {
	return func(p *ConnectionPool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegisterer registers the pool metrics with reg.
func WithRegisterer(reg prometheus.Registerer) PoolOption {
	return func(p *ConnectionPool) {
		p.registry = reg
	}
}

// NewPool validates cfg and opens up to cfg.MinSize connections. Endpoints
// that cannot be reached are skipped; the pool may start with fewer idle
// connections than requested.
func NewPool(ctx context.Context, cfg domain.PoolConfig, transport ports.Transport, opts ...PoolOption) (*ConnectionPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}
	if transport == nil {
		return nil, errors.New("invalid pool config: transport is required")
	}

	p := &ConnectionPool{
		cfg:        cfg.Clone(),
		transport:  transport,
		selector:   NewEndpointSelector(cfg.Addresses),
		logger:     log.NewNopLogger(),
		idle:       queue.New(),
		lent:       map[uint64]*Connection{},
		perAddress: map[string]int{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.metrics = newPoolMetrics(p.registry)
	p.metrics.setConnections(0, 0)

	opened := p.grow(ctx, cfg.MinSize)
	level.Info(p.logger).Log("msg", "connection pool ready", "idle", opened, "min", cfg.MinSize, "max", cfg.MaxSize, "addresses", len(cfg.Addresses))

	return p, nil
}

// MustNewPool is NewPool for callers that treat a bad config as a bug.
func MustNewPool(ctx context.Context, cfg domain.PoolConfig, transport ports.Transport, opts ...PoolOption) *ConnectionPool {
	p, err := NewPool(ctx, cfg, transport, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *ConnectionPool) Config() domain.PoolConfig {
	return p.cfg.Clone()
}

// grow opens up to n connections and returns how many it added. Each address
// gets n attempts on average before growth gives up.
func (p *ConnectionPool) grow(ctx context.Context, n int) int {
	if n <= 0 {
		return 0
	}

	attempts := n * p.selector.Len()
	opened := 0
	for attempt := 0; attempt < attempts && opened < n; attempt++ {
		if ctx.Err() != nil {
			break
		}
		if !p.reserve() {
			level.Debug(p.logger).Log("msg", "pool growth capped", "max", p.cfg.MaxSize)
			break
		}

		address := p.selector.Next()
		conn, err := OpenConnection(ctx, p.transport, address)
		if err != nil {
			p.release()
			p.metrics.connectionOpens.WithLabelValues(address, "failure").Inc()
			level.Warn(p.logger).Log("msg", "failed to open connection", "address", address, "err", err)
			continue
		}
		p.metrics.connectionOpens.WithLabelValues(address, "success").Inc()

		if !p.admit(conn) {
			p.closeConn(conn)
			break
		}
		level.Debug(p.logger).Log("msg", "connection opened", "address", address, "conn", conn.ID())
		opened++
	}

	return opened
}

func (p *ConnectionPool) reserve() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.total >= p.cfg.MaxSize {
		return false
	}
	p.total++
	p.dialing++
	return true
}

func (p *ConnectionPool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total--
	p.dialing--
}

func (p *ConnectionPool) admit(conn *Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dialing--
	if p.closed {
		p.total--
		return false
	}
	p.perAddress[conn.Address()]++
	p.idle.Add(conn)
	p.observeLocked()
	return true
}

func (p *ConnectionPool) take() (*Connection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.idle.Length() == 0 {
		return nil, false
	}
	conn := p.idle.Remove().(*Connection)
	p.lent[conn.ID()] = conn
	p.observeLocked()
	return conn, true
}

// GetSession borrows an idle connection, growing the pool by one when none
// is idle, and authenticates on it. A ctx that is already done is returned
// wrapped, never reported as exhaustion, and leaves the idle queue as it was.
func (p *ConnectionPool) GetSession(ctx context.Context, username, password string, retryConnect bool) (*Session, error) {
	if p.isClosed() {
		return nil, domain.ErrPoolClosed
	}

	conn, ok := p.take()
	if !ok {
		p.grow(ctx, 1)
		conn, ok = p.take()
	}
	if !ok {
		if p.isClosed() {
			return nil, domain.ErrPoolClosed
		}
		if err := ctx.Err(); err != nil {
			p.metrics.sessions.WithLabelValues("canceled").Inc()
			return nil, fmt.Errorf("get session: %w", err)
		}
		p.metrics.sessions.WithLabelValues("exhausted").Inc()
		level.Warn(p.logger).Log("msg", "pool exhausted", "max", p.cfg.MaxSize)
		return nil, domain.ErrPoolExhausted
	}

	auth, err := conn.Authenticate(ctx, username, password)
	if err != nil && !isTransportError(err) {
		p.metrics.sessions.WithLabelValues("canceled").Inc()
		p.GiveBack(conn)
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err != nil {
		p.metrics.sessions.WithLabelValues("rpc_failure").Inc()
		p.GiveBack(conn)
		return nil, fmt.Errorf("authenticate %s: %w: %w", username, domain.ErrorCodeRPCFailure, err)
	}
	if !auth.Code.Succeeded() {
		p.metrics.sessions.WithLabelValues("rejected").Inc()
		level.Info(p.logger).Log("msg", "authentication rejected", "user", username, "code", auth.Code, "address", conn.Address())
		p.GiveBack(conn)
		return nil, fmt.Errorf("authenticate %s: %w", username, &domain.ServerError{Code: auth.Code, Message: auth.ErrorMsg})
	}

	p.metrics.sessions.WithLabelValues("success").Inc()
	return newSession(p, conn, auth, username, retryConnect), nil
}

// GiveBack returns conn to the idle queue. Broken or retired connections,
// and every connection once the pool is closed, are closed instead.
// Connections the pool did not lend out are ignored.
func (p *ConnectionPool) GiveBack(conn *Connection) {
	if conn == nil {
		return
	}

	p.mu.Lock()
	if _, ok := p.lent[conn.ID()]; !ok {
		p.mu.Unlock()
		level.Warn(p.logger).Log("msg", "ignoring connection not lent by this pool", "conn", conn.ID(), "address", conn.Address())
		return
	}
	delete(p.lent, conn.ID())

	if p.closed || conn.Broken() || conn.Retired() {
		p.forgetLocked(conn)
		p.observeLocked()
		p.mu.Unlock()
		p.closeConn(conn)
		return
	}

	p.idle.Add(conn)
	p.observeLocked()
	p.mu.Unlock()
}

func (p *ConnectionPool) forgetLocked(conn *Connection) {
	p.total--
	address := conn.Address()
	p.perAddress[address]--
	if p.perAddress[address] <= 0 {
		delete(p.perAddress, address)
	}
}

func (p *ConnectionPool) observeLocked() {
	p.metrics.setConnections(p.idle.Length(), len(p.lent))
}

func (p *ConnectionPool) closeConn(conn *Connection) {
	if err := conn.Close(); err != nil {
		level.Debug(p.logger).Log("msg", "error closing connection", "address", conn.Address(), "conn", conn.ID(), "err", err)
	}
}

// Len returns the number of idle connections.
func (p *ConnectionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle.Length()
}

func (p *ConnectionPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	perAddress := make(map[string]int, len(p.perAddress))
	for address, n := range p.perAddress {
		perAddress[address] = n
	}

	return PoolStats{
		Idle:       p.idle.Length(),
		Borrowed:   len(p.lent),
		Total:      p.total,
		Max:        p.cfg.MaxSize,
		PerAddress: perAddress,
	}
}

// Addresses lists the addresses that have open connections, sorted.
func (s PoolStats) Addresses() []string {
	addresses := make([]string, 0, len(s.PerAddress))
	for address := range s.PerAddress {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

func (p *ConnectionPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close shuts every idle connection. Borrowed connections are closed when
// their sessions hand them back.
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	idle := make([]*Connection, 0, p.idle.Length())
	for p.idle.Length() > 0 {
		conn := p.idle.Remove().(*Connection)
		p.forgetLocked(conn)
		idle = append(idle, conn)
	}
	p.observeLocked()
	p.mu.Unlock()

	var errs error
	for _, conn := range idle {
		if err := conn.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("close connection to %s: %w", conn.Address(), err))
		}
	}
	level.Info(p.logger).Log("msg", "connection pool closed", "closed", len(idle))
	return errs
}
