package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/nebula-graph-cli/internal/adapters/ngql"
	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func newInsertCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert vertices and edges",
	}

	cmd.AddCommand(newInsertVertexCmd(app), newInsertEdgeCmd(app))

	return cmd
}

func newInsertVertexCmd(app *app) *cobra.Command {
	var (
		space string
		props []string
	)

	cmd := &cobra.Command{
		Use:   "vertex TAG VID [VID...]",
		Short: "Insert vertices carrying the same properties, waiting for TAG to exist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(props)
			if err != nil {
				return err
			}

			vertices := make([]ngql.Vertex, 0, len(args)-1)
			for _, vid := range args[1:] {
				vertices = append(vertices, ngql.Vertex{Tag: args[0], VID: vid, Props: values})
			}

			conn, err := app.connect(cmd, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			inserted, err := conn.graph.InsertVertices(cmd.Context(), space, vertices)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d of %d vertices\n", inserted, len(vertices))
			return err
		},
	}

	cmd.Flags().StringVar(&space, "space", "", "Graph space (default: the profile's space)")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "Property name=value (repeatable)")

	return cmd
}

func newInsertEdgeCmd(app *app) *cobra.Command {
	var (
		space string
		props []string
		rank  int64
	)

	cmd := &cobra.Command{
		Use:   "edge TYPE SRC DST",
		Short: "Insert an edge, waiting for TYPE to exist",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(props)
			if err != nil {
				return err
			}

			edge := ngql.Edge{Type: args[0], Src: args[1], Dst: args[2], Props: values}
			if cmd.Flags().Changed("rank") {
				edge.Rank = &rank
			}

			conn, err := app.connect(cmd, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			inserted, err := conn.graph.InsertEdges(cmd.Context(), space, []ngql.Edge{edge})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d of 1 edges\n", inserted)
			return err
		},
	}

	cmd.Flags().StringVar(&space, "space", "", "Graph space (default: the profile's space)")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "Property name=value (repeatable)")
	cmd.Flags().Int64Var(&rank, "rank", 0, "Edge rank")

	return cmd
}

// parseAssignments turns name=value pairs into typed values: quoted strings,
// null, booleans, integers and floats are recognised, anything else is a string.
func parseAssignments(raw []string) (map[string]domain.Value, error) {
	values := make(map[string]domain.Value, len(raw))
	for _, assignment := range raw {
		name, value, ok := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid property %q: want name=value", assignment)
		}
		values[name] = ngql.ParseLiteral(value)
	}
	return values, nil
}
