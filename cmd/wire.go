package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	resultadapter "github.com/bnema/nebula-graph-cli/internal/adapters/render/result"
	tomlrepo "github.com/bnema/nebula-graph-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/nebula-graph-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/nebula-graph-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/nebula-graph-cli/internal/adapters/secrets/pass"
	"github.com/bnema/nebula-graph-cli/internal/adapters/transport/wsrpc"
	"github.com/bnema/nebula-graph-cli/internal/application"
	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/logging"
	"github.com/bnema/nebula-graph-cli/internal/ports"
)

type app struct {
	settings       *viper.Viper
	profiles       ports.ProfileRepository
	secretsRoot    string
	secretStore    ports.SecretStore
	logger         log.Logger
	registry       *prometheus.Registry
	resultRenderer func(domain.ExecutionResult, resultadapter.RenderOptions) (string, error)
}

func wireApp(settings *viper.Viper) (*app, error) {
	repo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return &app{
		settings:       settings,
		profiles:       repo,
		secretsRoot:    filepath.Join(homeDir, ".nebula", "secrets"),
		logger:         logging.Nop(),
		registry:       prometheus.NewRegistry(),
		resultRenderer: resultadapter.Render,
	}, nil
}

// configure runs once flags are parsed.
func (a *app) configure(stderr io.Writer) error {
	logger, err := logging.New(stderr, a.settings.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	a.logger = logger

	store, err := a.newSecretStore()
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}
	a.secretStore = store

	return nil
}

func (a *app) newSecretStore() (ports.SecretStore, error) {
	switch backend := strings.ToLower(strings.TrimSpace(a.settings.GetString(keySecretBackend))); backend {
	case "", "chain":
		return chainstore.NewPassFirstWithFileFallback(a.secretsRoot, a.logger)
	case "file":
		return filestore.NewStore(a.secretsRoot), nil
	case "pass":
		return passstore.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported secret backend %q: want chain, file or pass", backend)
	}
}

// resolveProfile prefers --url over --profile.
func (a *app) resolveProfile(ctx context.Context) (domain.Profile, error) {
	if raw := strings.TrimSpace(a.settings.GetString(keyURL)); raw != "" {
		return domain.ParseConnURL(raw)
	}

	name := strings.TrimSpace(a.settings.GetString(keyProfile))
	if name == "" {
		name = defaultProfileName
	}

	profile, err := a.profiles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.Profile{}, fmt.Errorf("%w: add it with `ngc profile add %s --address host:port` or pass --url", err, name)
		}
		return domain.Profile{}, err
	}

	return profile, nil
}

func (a *app) newTransport(cfg domain.PoolConfig) *wsrpc.Transport {
	return wsrpc.NewTransport(
		wsrpc.WithScheme(a.settings.GetString(keyTransportScheme)),
		wsrpc.WithHandshakeTimeout(cfg.ConnectTimeout),
		wsrpc.WithLogger(a.logger),
	)
}

type connection struct {
	profile domain.Profile
	pool    *application.ConnectionPool
	graph   *application.GraphService
}

// connect warms a pool for the selected profile, behind a spinner unless
// quiet is set.
func (a *app) connect(cmd *cobra.Command, quiet bool) (*connection, error) {
	ctx := cmd.Context()

	profile, err := a.resolveProfile(ctx)
	if err != nil {
		return nil, err
	}

	transport := a.newTransport(profile.Pool)
	var pool *application.ConnectionPool
	build := func(ctx context.Context) (application.PoolStats, error) {
		var buildErr error
		pool, buildErr = application.NewPool(ctx, profile.Pool, transport,
			application.WithLogger(a.logger),
			application.WithRegisterer(a.registry),
		)
		if buildErr != nil {
			return application.PoolStats{}, buildErr
		}
		return pool.Stats(), nil
	}

	if quiet {
		_, err = build(ctx)
	} else {
		err = runConnectSpinner(ctx, cmd.ErrOrStderr(), profile, build)
	}
	if err != nil {
		return nil, fmt.Errorf("connect profile %s: %w", profile.Name, err)
	}

	return &connection{
		profile: profile,
		pool:    pool,
		graph:   application.NewGraphService(pool, profile, a.secretStore),
	}, nil
}

func (c *connection) Close() error {
	return c.pool.Close()
}

func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
