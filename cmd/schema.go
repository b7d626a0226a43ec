package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/nebula-graph-cli/internal/adapters/ngql"
)

func newSchemaCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create spaces, tags, edge types and indexes",
	}

	cmd.AddCommand(
		newSchemaSpaceCmd(app),
		newSchemaTypeCmd(app, ngql.KindTag),
		newSchemaTypeCmd(app, ngql.KindEdge),
		newSchemaIndexCmd(app),
	)

	return cmd
}

func newSchemaSpaceCmd(app *app) *cobra.Command {
	var spec ngql.SpaceSpec

	cmd := &cobra.Command{
		Use:   "space NAME",
		Short: "Create a graph space if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Name = args[0]

			conn, err := app.connect(cmd, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.graph.CreateSpace(cmd.Context(), spec); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created space %s\n", spec.Name)
			return nil
		},
	}

	cmd.Flags().IntVar(&spec.PartitionNum, "partitions", 1, "Partition count")
	cmd.Flags().IntVar(&spec.ReplicaFactor, "replicas", 1, "Replica factor")
	cmd.Flags().IntVar(&spec.FixedStringLen, "vid-fixed-string", 0, "Use FIXED_STRING(n) vertex ids instead of INT64")
	cmd.Flags().StringVar(&spec.Comment, "comment", "", "Space comment")

	return cmd
}

func newSchemaTypeCmd(app *app, kind ngql.SchemaKind) *cobra.Command {
	var (
		space   string
		props   []string
		comment string
		wait    bool
	)

	noun := strings.ToLower(string(kind))
	cmd := &cobra.Command{
		Use:   noun + " NAME",
		Short: fmt.Sprintf("Create a %s if it does not exist", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := ngql.SchemaSpec{Kind: kind, Name: args[0], Comment: comment}
			for _, raw := range props {
				prop, err := parseProperty(raw)
				if err != nil {
					return err
				}
				spec.Properties = append(spec.Properties, prop)
			}

			conn, err := app.connect(cmd, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.graph.CreateSchema(cmd.Context(), space, spec); err != nil {
				return err
			}
			if wait {
				if err := conn.graph.WaitForSchema(cmd.Context(), space, kind, spec.Name); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", noun, spec.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "space", "", "Graph space (default: the profile's space)")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "Property name:type[:not-null][:default=V][:comment=C] (repeatable)")
	cmd.Flags().StringVar(&comment, "comment", "", "Schema comment")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the new schema is visible")

	return cmd
}

func newSchemaIndexCmd(app *app) *cobra.Command {
	var (
		space   string
		kind    string
		schema  string
		fields  []string
		comment string
	)

	cmd := &cobra.Command{
		Use:   "index NAME",
		Short: "Create a tag or edge index if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaKind, err := ngql.ParseSchemaKind(kind)
			if err != nil {
				return err
			}

			spec := ngql.IndexSpec{
				Kind:    schemaKind,
				Name:    args[0],
				Schema:  schema,
				Fields:  make(map[string]int, len(fields)),
				Comment: comment,
			}
			for _, raw := range fields {
				name, length, err := parseIndexField(raw)
				if err != nil {
					return err
				}
				spec.Fields[name] = length
			}

			conn, err := app.connect(cmd, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.graph.CreateIndex(cmd.Context(), space, spec); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s index %s on %s\n", strings.ToLower(string(schemaKind)), spec.Name, spec.Schema)
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "space", "", "Graph space (default: the profile's space)")
	cmd.Flags().StringVar(&kind, "kind", "tag", "Indexed schema kind: tag or edge")
	cmd.Flags().StringVar(&schema, "on", "", "Tag or edge type to index")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Indexed property name[:length] (repeatable)")
	cmd.Flags().StringVar(&comment, "comment", "", "Index comment")
	_ = cmd.MarkFlagRequired("on")

	return cmd
}

// parseProperty reads "name:type" followed by optional ":not-null",
// ":default=V" and ":comment=C" parts.
func parseProperty(raw string) (ngql.Property, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return ngql.Property{}, fmt.Errorf("invalid property %q: want name:type", raw)
	}

	prop := ngql.Property{
		Name:     strings.TrimSpace(parts[0]),
		Type:     strings.TrimSpace(parts[1]),
		Nullable: true,
	}
	for _, part := range parts[2:] {
		key, value, _ := strings.Cut(part, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "not-null", "notnull":
			prop.Nullable = false
		case "default":
			prop.Default = value
		case "comment":
			prop.Comment = value
		default:
			return ngql.Property{}, fmt.Errorf("invalid property %q: unknown option %q", raw, part)
		}
	}

	return prop, nil
}

func parseIndexField(raw string) (string, int, error) {
	name, rawLength, hasLength := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, fmt.Errorf("invalid index field %q", raw)
	}
	if !hasLength {
		return name, 0, nil
	}

	length, err := strconv.Atoi(strings.TrimSpace(rawLength))
	if err != nil || length < 0 {
		return "", 0, fmt.Errorf("invalid index field %q: length must be a non-negative integer", raw)
	}
	return name, length, nil
}
