package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bnema/nebula-graph-cli/internal/adapters/ngql"
	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
)

const (
	DefaultSchemaPollInterval = 500 * time.Millisecond
	DefaultSchemaWait         = 10 * time.Second
)

// GraphService runs each operation in its own short-lived session taken
// from the pool, using the profile's credentials.
type GraphService struct {
	pool    SessionProvider
	profile domain.Profile
	store   ports.SecretStore

	pollInterval time.Duration
	schemaWait   time.Duration
}

type GraphServiceOption func(*GraphService)

// WithSchemaPolling controls how inserts wait for freshly created tags and
// edge types to become visible.
func WithSchemaPolling(interval, timeout time.Duration) GraphServiceOption {
	return func(s *GraphService) {
		if interval > 0 {
			s.pollInterval = interval
		}
		if timeout > 0 {
			s.schemaWait = timeout
		}
	}
}

func NewGraphService(pool SessionProvider, profile domain.Profile, store ports.SecretStore, opts ...GraphServiceOption) *GraphService {
	s := &GraphService{
		pool:         pool,
		profile:      profile,
		store:        store,
		pollInterval: DefaultSchemaPollInterval,
		schemaWait:   DefaultSchemaWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credentials prefers the inline password and falls back to the secret store.
func (s *GraphService) Credentials(ctx context.Context) (string, string, error) {
	username := s.profile.Pool.Username
	if s.profile.Pool.Password != "" || s.profile.PasswordRef == "" {
		return username, s.profile.Pool.Password, nil
	}
	if s.store == nil {
		return "", "", fmt.Errorf("resolve password %s: no secret store configured", s.profile.PasswordRef)
	}

	password, err := s.store.Get(ctx, s.profile.PasswordRef)
	if err != nil {
		return "", "", fmt.Errorf("resolve password %s: %w", s.profile.PasswordRef, err)
	}
	return username, password, nil
}

func (s *GraphService) withSession(ctx context.Context, space string, fn func(*Session) error) error {
	username, password, err := s.Credentials(ctx)
	if err != nil {
		return err
	}

	return WithSession(ctx, s.pool, username, password, true, func(session *Session) error {
		if space != "" {
			stmt, err := ngql.Use(space)
			if err != nil {
				return err
			}
			if _, err := session.Execute(ctx, stmt); err != nil {
				return fmt.Errorf("use space %s: %w", space, err)
			}
		}
		return fn(session)
	})
}

func (s *GraphService) spaceOrDefault(space string) string {
	if space != "" {
		return space
	}
	return s.profile.Space
}

// Query runs stmt in space (or the profile's space). A server-side failure
// still returns the result so callers can show the server message.
func (s *GraphService) Query(ctx context.Context, space, stmt string) (domain.ExecutionResult, error) {
	var result domain.ExecutionResult
	err := s.withSession(ctx, s.spaceOrDefault(space), func(session *Session) error {
		var execErr error
		result, execErr = session.Execute(ctx, stmt)
		return execErr
	})
	return result, err
}

func (s *GraphService) ShowSpaces(ctx context.Context) ([]string, error) {
	var spaces []string
	err := s.withSession(ctx, "", func(session *Session) error {
		result, err := session.Execute(ctx, ngql.ShowSpaces())
		if err != nil {
			return fmt.Errorf("show spaces: %w", err)
		}
		spaces = result.ColumnStrings("Name")
		return nil
	})
	return spaces, err
}

func (s *GraphService) CreateSpace(ctx context.Context, spec ngql.SpaceSpec) error {
	stmt, err := ngql.CreateSpace(spec)
	if err != nil {
		return fmt.Errorf("build create space: %w", err)
	}
	return s.exec(ctx, "", stmt, "create space "+spec.Name)
}

func (s *GraphService) CreateSchema(ctx context.Context, space string, spec ngql.SchemaSpec) error {
	stmt, err := ngql.CreateSchema(spec)
	if err != nil {
		return fmt.Errorf("build create %s: %w", spec.Kind, err)
	}
	return s.exec(ctx, s.spaceOrDefault(space), stmt, fmt.Sprintf("create %s %s", spec.Kind, spec.Name))
}

func (s *GraphService) CreateIndex(ctx context.Context, space string, spec ngql.IndexSpec) error {
	stmt, err := ngql.CreateIndex(spec)
	if err != nil {
		return fmt.Errorf("build create index: %w", err)
	}
	return s.exec(ctx, s.spaceOrDefault(space), stmt, "create index "+spec.Name)
}

func (s *GraphService) exec(ctx context.Context, space, stmt, what string) error {
	return s.withSession(ctx, space, func(session *Session) error {
		if _, err := session.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		return nil
	})
}

// HasSchema reports whether space has a tag or edge type called name.
func (s *GraphService) HasSchema(ctx context.Context, space string, kind ngql.SchemaKind, name string) (bool, error) {
	var found bool
	err := s.withSession(ctx, s.spaceOrDefault(space), func(session *Session) error {
		var err error
		found, err = hasSchema(ctx, session, kind, name)
		return err
	})
	return found, err
}

func hasSchema(ctx context.Context, session *Session, kind ngql.SchemaKind, name string) (bool, error) {
	result, err := session.Execute(ctx, ngql.ShowSchemas(kind))
	if err != nil {
		return false, fmt.Errorf("list %s schemas: %w", kind, err)
	}
	return slices.Contains(result.ColumnStrings("Name"), name), nil
}

// WaitForSchema polls until the schema shows up or ctx is done.
func (s *GraphService) WaitForSchema(ctx context.Context, space string, kind ngql.SchemaKind, name string) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		found, err := s.HasSchema(ctx, space, kind, name)
		if err != nil && ctx.Err() == nil {
			return err
		}
		if found {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s %s: %w", kind, name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *GraphService) ensureSchemas(ctx context.Context, space string, kind ngql.SchemaKind, names []string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.schemaWait)
	defer cancel()

	for _, name := range names {
		if err := s.WaitForSchema(waitCtx, space, kind, name); err != nil {
			return err
		}
	}
	return nil
}

// InsertVertices waits for every referenced tag, then inserts the vertices in
// one session. It returns how many inserts succeeded.
func (s *GraphService) InsertVertices(ctx context.Context, space string, vertices []ngql.Vertex) (int, error) {
	space = s.spaceOrDefault(space)
	stmts := make([]string, 0, len(vertices))
	tags := make([]string, 0, len(vertices))
	for _, vertex := range vertices {
		stmt, err := ngql.InsertVertex(vertex)
		if err != nil {
			return 0, fmt.Errorf("build insert vertex %q: %w", vertex.VID, err)
		}
		stmts = append(stmts, stmt)
		if !slices.Contains(tags, vertex.Tag) {
			tags = append(tags, vertex.Tag)
		}
	}

	if err := s.ensureSchemas(ctx, space, ngql.KindTag, tags); err != nil {
		return 0, err
	}
	return s.insert(ctx, space, stmts)
}

func (s *GraphService) InsertEdges(ctx context.Context, space string, edges []ngql.Edge) (int, error) {
	space = s.spaceOrDefault(space)
	stmts := make([]string, 0, len(edges))
	types := make([]string, 0, len(edges))
	for _, edge := range edges {
		stmt, err := ngql.InsertEdge(edge)
		if err != nil {
			return 0, fmt.Errorf("build insert edge %s->%s: %w", edge.Src, edge.Dst, err)
		}
		stmts = append(stmts, stmt)
		if !slices.Contains(types, edge.Type) {
			types = append(types, edge.Type)
		}
	}

	if err := s.ensureSchemas(ctx, space, ngql.KindEdge, types); err != nil {
		return 0, err
	}
	return s.insert(ctx, space, stmts)
}

func (s *GraphService) insert(ctx context.Context, space string, stmts []string) (int, error) {
	if len(stmts) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.withSession(ctx, space, func(session *Session) error {
		var errs error
		for _, stmt := range stmts {
			if _, err := session.Execute(ctx, stmt); err != nil {
				if errors.Is(err, domain.ErrorCodeRPCFailure) {
					return errors.Join(errs, err)
				}
				errs = errors.Join(errs, err)
				continue
			}
			inserted++
		}
		return errs
	})
	return inserted, err
}
