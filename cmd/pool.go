package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/nebula-graph-cli/internal/application"
	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func newPoolCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect and exercise the connection pool",
	}

	cmd.AddCommand(
		newPoolStatusCmd(app),
		newPoolBenchCmd(app),
	)

	return cmd
}

func newPoolStatusCmd(app *app) *cobra.Command {
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Warm the pool for the selected profile and show its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := app.connect(cmd, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			writePoolStats(cmd.OutOrStdout(), conn.profile, conn.pool.Stats())
			if !withMetrics {
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return writeMetrics(cmd.OutOrStdout(), app)
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", true, "Print gathered pool metrics")

	return cmd
}

func newPoolBenchCmd(app *app) *cobra.Command {
	var (
		sessions    int
		concurrency int
		statement   string
		space       string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a statement through many concurrent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessions <= 0 {
				return fmt.Errorf("--sessions must be positive, got %d", sessions)
			}
			if concurrency <= 0 {
				concurrency = sessions
			}

			conn, err := app.connect(cmd, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			report := runBench(cmd, conn, sessions, concurrency, space, statement)
			report.write(cmd.OutOrStdout())
			writePoolStats(cmd.OutOrStdout(), conn.profile, conn.pool.Stats())

			if report.ok.Load() == 0 {
				return fmt.Errorf("bench: all %d sessions failed", sessions)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sessions, "sessions", 10, "Number of sessions to run")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Sessions in flight at once (default: all)")
	cmd.Flags().StringVar(&statement, "statement", "RETURN 1;", "Statement executed in every session")
	cmd.Flags().StringVar(&space, "space", "", "Graph space (default: the profile's space)")

	return cmd
}

type benchReport struct {
	sessions int
	elapsed  time.Duration
	ok       *atomic.Int64
	failed   *atomic.Int64

	mu       sync.Mutex
	failures map[domain.ErrorCode]int
}

func runBench(cmd *cobra.Command, conn *connection, sessions, concurrency int, space, statement string) *benchReport {
	report := &benchReport{
		sessions: sessions,
		ok:       atomic.NewInt64(0),
		failed:   atomic.NewInt64(0),
		failures: map[domain.ErrorCode]int{},
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)

	start := time.Now()
	for i := 0; i < sessions; i++ {
		g.Go(func() error {
			if _, err := conn.graph.Query(ctx, space, statement); err != nil {
				report.fail(err)
				return nil
			}
			report.ok.Inc()
			return nil
		})
	}
	_ = g.Wait()
	report.elapsed = time.Since(start)

	return report
}

func (r *benchReport) fail(err error) {
	r.failed.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[domain.CodeOf(err)]++
}

func (r *benchReport) write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "sessions: %d\n", r.sessions)
	_, _ = fmt.Fprintf(w, "succeeded: %d\n", r.ok.Load())
	_, _ = fmt.Fprintf(w, "failed: %d\n", r.failed.Load())

	codes := make([]domain.ErrorCode, 0, len(r.failures))
	for code := range r.failures {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] > codes[j] })
	for _, code := range codes {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", code, r.failures[code])
	}

	_, _ = fmt.Fprintf(w, "elapsed: %s\n", r.elapsed.Round(time.Millisecond))
}

func writePoolStats(w io.Writer, profile domain.Profile, stats application.PoolStats) {
	_, _ = fmt.Fprintf(w, "profile: %s\n", profile.Name)
	_, _ = fmt.Fprintf(w, "addresses: %s\n", strings.Join(profile.Pool.Addresses, ", "))
	_, _ = fmt.Fprintf(w, "connections: %d/%d (idle %d, borrowed %d)\n", stats.Total, stats.Max, stats.Idle, stats.Borrowed)
	for _, address := range stats.Addresses() {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", address, stats.PerAddress[address])
	}
}

func writeMetrics(w io.Writer, app *app) error {
	families, err := app.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
