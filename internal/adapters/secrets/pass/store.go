package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/nebula-graph-cli/internal/domain"
	"github.com/bnema/nebula-graph-cli/internal/ports"
)

const defaultBinary = "pass"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store shells out to the pass(1) password manager.
type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

type Option func(*options)

type options struct {
	binary string
}

// WithBinary runs a different executable, e.g. gopass in pass-compat mode.
func WithBinary(name string) Option {
	return func(o *options) {
		if strings.TrimSpace(name) != "" {
			o.binary = name
		}
	}
}

func NewStore(opts ...Option) *Store {
	o := options{binary: defaultBinary}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{run: commandRunner(o.binary)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, value+"\n", "insert", "-m", "-f", key)
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		if isNotFound(stderr) {
			return "", fmt.Errorf("pass get %q: %w", key, domain.ErrCredentialNotFound)
		}
		return "", formatError("get", key, err, stderr)
	}

	// pass show prints the whole entry; the password is its first line.
	first, _, _ := strings.Cut(stdout, "\n")
	first = strings.TrimSuffix(first, "\r")

	return first, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", key)
	if err != nil {
		if isNotFound(stderr) {
			return nil
		}
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func commandRunner(binary string) runFunc {
	return func(ctx context.Context, input string, args ...string) (string, string, error) {
		path, err := exec.LookPath(binary)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return "", "", ErrUnavailable
			}
			return "", "", fmt.Errorf("locate %s command: %w", binary, err)
		}

		cmd := exec.CommandContext(ctx, path, args...)
		if input != "" {
			cmd.Stdin = strings.NewReader(input)
		}

		var stdout bytes.Buffer
		var stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err = cmd.Run()
		return stdout.String(), strings.TrimSpace(stderr.String()), err
	}
}

func isNotFound(stderr string) bool {
	return strings.Contains(stderr, "is not in the password store")
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
