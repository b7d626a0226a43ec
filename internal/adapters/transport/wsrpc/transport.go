package wsrpc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
)

var _ ports.Transport = (*Transport)(nil)

var errResponseMismatch = errors.New("response id does not match request")

type Transport struct {
	scheme string
	path   string
	dialer websocket.Dialer
	logger log.Logger
}

type Option func(*Transport)

// WithScheme selects "ws" or "wss".
func WithScheme(scheme string) Option {
	return func(t *Transport) {
		if scheme != "" {
			t.scheme = scheme
		}
	}
}

func WithPath(path string) Option {
	return func(t *Transport) {
		if path != "" {
			t.path = path
		}
	}
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.dialer.HandshakeTimeout = timeout
	}
}

func WithTLSConfig(cfg *tls.Config) Option {
	return func(t *Transport) {
		t.dialer.TLSClientConfig = cfg
	}
}

func WithLogger(logger log.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		scheme: "ws",
		path:   DefaultPath,
		dialer: websocket.Dialer{Proxy: websocket.DefaultDialer.Proxy},
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Open(ctx context.Context, address string) (ports.TransportConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}

	target := url.URL{Scheme: t.scheme, Host: address, Path: t.path}
	ws, resp, err := t.dialer.DialContext(ctx, target.String(), nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}

	level.Debug(t.logger).Log("msg", "websocket connected", "url", target.String())
	return &conn{ws: ws, address: address, logger: t.logger}, nil
}

type conn struct {
	mu      sync.Mutex
	ws      *websocket.Conn
	address string
	logger  log.Logger
	nextID  uint64
	closed  bool
}

func (c *conn) Authenticate(ctx context.Context, username, password string) (domain.AuthResult, error) {
	var result AuthenticateResult
	if err := c.call(ctx, MethodAuthenticate, AuthenticateParams{Username: username, Password: password}, &result); err != nil {
		return domain.AuthResult{Code: domain.ErrorCodeRPCFailure}, err
	}
	return decodeAuth(result), nil
}

func (c *conn) Execute(ctx context.Context, sessionID int64, stmt string) (domain.ExecutionResult, error) {
	var result ExecuteResult
	if err := c.call(ctx, MethodExecute, ExecuteParams{SessionID: sessionID, Statement: stmt}, &result); err != nil {
		return domain.ExecutionResult{Code: domain.ErrorCodeRPCFailure}, err
	}
	return decodeExecution(result), nil
}

func (c *conn) Signout(ctx context.Context, sessionID int64) error {
	return c.call(ctx, MethodSignout, SignoutParams{SessionID: sessionID}, nil)
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	deadline := time.Now().Add(time.Second)
	if err := c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
		level.Debug(c.logger).Log("msg", "failed to send close frame", "address", c.address, "err", err)
	}
	return c.ws.Close()
}

func (c *conn) call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.roundTrip(ctx, method, params, result); err != nil {
		return &domain.TransportError{Op: method, Address: c.address, Err: err}
	}
	return nil
}

func (c *conn) roundTrip(ctx context.Context, method string, params, result any) error {
	if c.closed {
		return net.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", method, err)
	}

	deadline, _ := ctx.Deadline()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.ws.SetReadDeadline(time.Now())
	})
	defer stop()

	c.nextID++
	id := c.nextID
	if err := c.ws.WriteJSON(Request{ID: id, Method: method, Params: raw}); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	var resp Response
	if err := c.ws.ReadJSON(&resp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		return fmt.Errorf("read response: %w", err)
	}
	if resp.ID != id {
		return fmt.Errorf("%w: sent %d, got %d", errResponseMismatch, id, resp.ID)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
