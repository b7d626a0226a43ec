// Package graphtest is an in-memory graph server for tests. It can be used
// directly as a ports.Transport or served over websockets with httptest.
package graphtest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/nebula-graph-cli/internal/adapters/transport/wsrpc"
	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
)

var _ ports.Transport = (*Server)(nil)

var ErrUnreachable = errors.New("connection refused")

type Server struct {
	mu sync.Mutex

	users       map[string]string
	spaces      map[string]*space
	sessions    map[int64]*serverSession
	nextSession int64
	timeZone    string
	offset      int32

	unreachable map[string]bool
	authFailure error
	openDelay   time.Duration

	opens        map[string]int
	liveConns    int
	authAttempts int
	signouts     int
	statements   []string
}

type space struct {
	tags     map[string]struct{}
	edges    map[string]struct{}
	indexes  map[string]struct{}
	vertices int
	edgeRows int
}

type serverSession struct {
	user  string
	space string
}

type Option func(*Server)

func WithUser(name, password string) Option {
	return func(s *Server) {
		s.users[name] = password
	}
}

func WithSpace(name string, tags ...string) Option {
	return func(s *Server) {
		sp := newSpace()
		for _, tag := range tags {
			sp.tags[tag] = struct{}{}
		}
		s.spaces[name] = sp
	}
}

func WithTimeZone(name string, offsetSeconds int32) Option {
	return func(s *Server) {
		s.timeZone = name
		s.offset = offsetSeconds
	}
}

// NewServer starts with user root/nebula and no spaces.
func NewServer(opts ...Option) *Server {
	s := &Server{
		users:       map[string]string{"root": "nebula"},
		spaces:      map[string]*space{},
		sessions:    map[int64]*serverSession{},
		nextSession: 1000,
		unreachable: map[string]bool{},
		opens:       map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSpace() *space {
	return &space{
		tags:    map[string]struct{}{},
		edges:   map[string]struct{}{},
		indexes: map[string]struct{}{},
	}
}

// Handler serves the wsrpc protocol. The request Host is used as the address.
func (s *Server) Handler() http.Handler {
	return wsrpc.NewHandler(func(r *http.Request) (ports.TransportConn, error) {
		return s.Open(r.Context(), r.Host)
	}, nil)
}

func (s *Server) SetUnreachable(address string, unreachable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreachable[address] = unreachable
}

// FailAuthentication makes every authenticate call fail at the transport
// level with err. Pass nil to restore normal behaviour.
func (s *Server) FailAuthentication(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authFailure = err
}

// SetOpenDelay slows down every Open call.
func (s *Server) SetOpenDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openDelay = d
}

func (s *Server) Open(ctx context.Context, address string) (ports.TransportConn, error) {
	s.mu.Lock()
	delay := s.openDelay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &domain.TransportError{Op: "dial", Address: address, Err: ctx.Err()}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: err}
	}
	if s.unreachable[address] {
		return nil, &domain.TransportError{Op: "dial", Address: address, Err: ErrUnreachable}
	}

	s.opens[address]++
	s.liveConns++
	return &conn{server: s, address: address}, nil
}

// Opens reports how many connections were opened to address.
func (s *Server) Opens(address string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens[address]
}

func (s *Server) TotalOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.opens {
		total += n
	}
	return total
}

// LiveConns counts connections opened and not yet closed.
func (s *Server) LiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveConns
}

func (s *Server) AuthAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authAttempts
}

func (s *Server) Signouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signouts
}

func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Statements returns every statement executed so far, in order.
func (s *Server) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

// Counts reports how many vertices and edges were inserted into name.
func (s *Server) Counts(name string) (vertices, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.spaces[name]
	if !ok {
		return 0, 0
	}
	return sp.vertices, sp.edgeRows
}

func (s *Server) authenticate(username, password string) (domain.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authAttempts++
	if s.authFailure != nil {
		return domain.AuthResult{Code: domain.ErrorCodeRPCFailure}, s.authFailure
	}

	expected, ok := s.users[username]
	if !ok || expected != password {
		return domain.AuthResult{
			Code:     domain.ErrorCodeBadUsernamePassword,
			ErrorMsg: "Invalid password",
		}, nil
	}

	s.nextSession++
	id := s.nextSession
	s.sessions[id] = &serverSession{user: username}

	return domain.AuthResult{
		Code:                  domain.ErrorCodeSucceeded,
		SessionID:             id,
		TimeZoneName:          s.timeZone,
		TimeZoneOffsetSeconds: s.offset,
	}, nil
}

func (s *Server) signout(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.signouts++
	delete(s.sessions, sessionID)
}

func (s *Server) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveConns--
}

var (
	useStmt          = regexp.MustCompile("(?i)^USE\\s+`?([\\w-]+)`?$")
	createSpaceStmt  = regexp.MustCompile("(?i)^CREATE\\s+SPACE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?`?([\\w-]+)`?")
	createSchemaStmt = regexp.MustCompile("(?i)^CREATE\\s+(TAG|EDGE)\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?`?([\\w-]+)`?\\s*\\(")
	createIndexStmt  = regexp.MustCompile("(?i)^CREATE\\s+(TAG|EDGE)\\s+INDEX\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?`?([\\w-]+)`?\\s+ON\\s+`?([\\w-]+)`?")
	insertStmt       = regexp.MustCompile("(?i)^INSERT\\s+(VERTEX|EDGE)\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?`?([\\w-]+)`?")
	returnStmt       = regexp.MustCompile("(?i)^(?:RETURN|YIELD)\\s+(.+)$")
)

func (s *Server) execute(sessionID int64, stmt string) domain.ExecutionResult {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.statements = append(s.statements, stmt)

	sess, ok := s.sessions[sessionID]
	if !ok {
		return failure(domain.ErrorCodeSessionInvalid, "Session `%d' not found", sessionID)
	}

	result := s.run(sess, strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	result.SpaceName = sess.space
	result.Latency = time.Since(start)
	return result
}

func (s *Server) run(sess *serverSession, stmt string) domain.ExecutionResult {
	stmt = strings.TrimSpace(stmt)
	upper := strings.ToUpper(stmt)

	switch {
	case stmt == "":
		return failure(domain.ErrorCodeStatementEmpty, "statement is empty")

	case useStmt.MatchString(stmt):
		name := useStmt.FindStringSubmatch(stmt)[1]
		if _, ok := s.spaces[name]; !ok {
			return failure(domain.ErrorCodeSpaceNotFound, "SpaceNotFound: SpaceName `%s`", name)
		}
		sess.space = name
		return domain.ExecutionResult{}

	case upper == "SHOW SPACES":
		return nameTable(keys(s.spaces))

	case upper == "SHOW TAGS" || upper == "SHOW EDGES":
		sp, res, ok := s.currentSpace(sess)
		if !ok {
			return res
		}
		if upper == "SHOW TAGS" {
			return nameTable(keys(sp.tags))
		}
		return nameTable(keys(sp.edges))

	case createIndexStmt.MatchString(stmt):
		sp, res, ok := s.currentSpace(sess)
		if !ok {
			return res
		}
		m := createIndexStmt.FindStringSubmatch(stmt)
		schemas := sp.tags
		if strings.EqualFold(m[1], "EDGE") {
			schemas = sp.edges
		}
		if _, exists := schemas[m[3]]; !exists {
			return failure(domain.ErrorCodeExecutionError, "%s not found: %s", strings.ToLower(m[1]), m[3])
		}
		sp.indexes[m[2]] = struct{}{}
		return domain.ExecutionResult{}

	case createSpaceStmt.MatchString(stmt):
		name := createSpaceStmt.FindStringSubmatch(stmt)[1]
		if _, exists := s.spaces[name]; !exists {
			s.spaces[name] = newSpace()
		}
		return domain.ExecutionResult{}

	case createSchemaStmt.MatchString(stmt):
		sp, res, ok := s.currentSpace(sess)
		if !ok {
			return res
		}
		m := createSchemaStmt.FindStringSubmatch(stmt)
		if strings.EqualFold(m[1], "TAG") {
			sp.tags[m[2]] = struct{}{}
		} else {
			sp.edges[m[2]] = struct{}{}
		}
		return domain.ExecutionResult{}

	case insertStmt.MatchString(stmt):
		sp, res, ok := s.currentSpace(sess)
		if !ok {
			return res
		}
		m := insertStmt.FindStringSubmatch(stmt)
		if strings.EqualFold(m[1], "VERTEX") {
			if _, exists := sp.tags[m[2]]; !exists {
				return failure(domain.ErrorCodeSemanticError, "No schema found for `%s'", m[2])
			}
			sp.vertices++
			return domain.ExecutionResult{}
		}
		if _, exists := sp.edges[m[2]]; !exists {
			return failure(domain.ErrorCodeSemanticError, "No schema found for `%s'", m[2])
		}
		sp.edgeRows++
		return domain.ExecutionResult{}

	case returnStmt.MatchString(stmt):
		expr := strings.TrimSpace(returnStmt.FindStringSubmatch(stmt)[1])
		return domain.ExecutionResult{Data: &domain.DataSet{
			ColumnNames: []string{expr},
			Rows:        []domain.Row{{Values: []domain.Value{literal(expr)}}},
		}}

	default:
		return failure(domain.ErrorCodeSyntaxError, "SyntaxError: syntax error near `%s'", firstWord(stmt))
	}
}

func (s *Server) currentSpace(sess *serverSession) (*space, domain.ExecutionResult, bool) {
	if sess.space == "" {
		return nil, failure(domain.ErrorCodeSemanticError, "Space was not chosen."), false
	}
	sp, ok := s.spaces[sess.space]
	if !ok {
		return nil, failure(domain.ErrorCodeSpaceNotFound, "SpaceNotFound: SpaceName `%s`", sess.space), false
	}
	return sp, domain.ExecutionResult{}, true
}

func failure(code domain.ErrorCode, format string, args ...any) domain.ExecutionResult {
	return domain.ExecutionResult{Code: code, ErrorMsg: fmt.Sprintf(format, args...)}
}

func nameTable(names []string) domain.ExecutionResult {
	rows := make([]domain.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, domain.Row{Values: []domain.Value{domain.StringValue(name)}})
	}
	return domain.ExecutionResult{Data: &domain.DataSet{ColumnNames: []string{"Name"}, Rows: rows}}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func literal(expr string) domain.Value {
	if unquoted, err := strconv.Unquote(expr); err == nil {
		return domain.StringValue(unquoted)
	}
	if i, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return domain.IntValue(i)
	}
	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return domain.FloatValue(f)
	}
	if b, err := strconv.ParseBool(expr); err == nil {
		return domain.BoolValue(b)
	}
	return domain.StringValue(expr)
}

func firstWord(stmt string) string {
	if fields := strings.Fields(stmt); len(fields) > 0 {
		return fields[0]
	}
	return stmt
}

type conn struct {
	server  *Server
	address string

	mu     sync.Mutex
	closed bool
}

func (c *conn) check(ctx context.Context, op string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return &domain.TransportError{Op: op, Address: c.address, Err: net.ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Op: op, Address: c.address, Err: err}
	}
	return nil
}

func (c *conn) Authenticate(ctx context.Context, username, password string) (domain.AuthResult, error) {
	if err := c.check(ctx, "authenticate"); err != nil {
		return domain.AuthResult{Code: domain.ErrorCodeRPCFailure}, err
	}
	result, err := c.server.authenticate(username, password)
	if err != nil {
		return result, &domain.TransportError{Op: "authenticate", Address: c.address, Err: err}
	}
	return result, nil
}

func (c *conn) Execute(ctx context.Context, sessionID int64, stmt string) (domain.ExecutionResult, error) {
	if err := c.check(ctx, "execute"); err != nil {
		return domain.ExecutionResult{Code: domain.ErrorCodeRPCFailure}, err
	}
	return c.server.execute(sessionID, stmt), nil
}

func (c *conn) Signout(ctx context.Context, sessionID int64) error {
	if err := c.check(ctx, "signout"); err != nil {
		return err
	}
	c.server.signout(sessionID)
	return nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.server.closeConn()
	return nil
}
