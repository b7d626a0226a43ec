package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	resultadapter "github.com/bnema/nebula-graph-cli/internal/adapters/render/result"
	"github.com/bnema/nebula-graph-cli/internal/domain"
)

type queryOutput struct {
	Statement     string          `json:"statement"`
	Space         string          `json:"space,omitempty"`
	ErrorCode     int32           `json:"error_code"`
	ErrorName     string          `json:"error_name"`
	ErrorMsg      string          `json:"error_msg,omitempty"`
	LatencyMicros int64           `json:"latency_us"`
	Comment       string          `json:"comment,omitempty"`
	Data          *domain.DataSet `json:"data,omitempty"`
}

func newQueryOutput(stmt string, result domain.ExecutionResult) queryOutput {
	return queryOutput{
		Statement:     stmt,
		Space:         result.SpaceName,
		ErrorCode:     int32(result.Code),
		ErrorName:     result.Code.String(),
		ErrorMsg:      result.ErrorMsg,
		LatencyMicros: result.Latency.Microseconds(),
		Comment:       result.Comment,
		Data:          result.Data,
	}
}

func newQueryCmd(app *app) *cobra.Command {
	var (
		space  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query [STATEMENT...]",
		Short: "Run one statement in a pooled session (reads stdin when no statement is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stmt := strings.TrimSpace(strings.Join(args, " "))
			if stmt == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read statement: %w", err)
				}
				stmt = strings.TrimSpace(string(raw))
			}
			if stmt == "" {
				return errors.New("no statement given")
			}

			conn, err := app.connect(cmd, asJSON)
			if err != nil {
				return err
			}
			defer conn.Close()

			// A failed statement still carries a result worth showing.
			result, queryErr := conn.graph.Query(cmd.Context(), space, stmt)
			if queryErr != nil && result.Code.Succeeded() {
				return queryErr
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(newQueryOutput(stmt, result)); err != nil {
					return err
				}
				return queryErr
			}

			rendered, err := app.resultRenderer(result, resultadapter.RenderOptions{Statement: stmt})
			if err != nil {
				return fmt.Errorf("render result: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			return queryErr
		},
	}

	cmd.Flags().StringVar(&space, "space", "", "Graph space to USE first (default: the profile's space)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSpacesCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "List graph spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := app.connect(cmd, asJSON)
			if err != nil {
				return err
			}
			defer conn.Close()

			spaces, err := conn.graph.ShowSpaces(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if spaces == nil {
					spaces = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(spaces)
			}

			if len(spaces) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No spaces.")
				return nil
			}
			for _, space := range spaces {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), sanitizeForTerminal(space))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
