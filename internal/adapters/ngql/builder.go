// Package ngql renders the handful of nGQL statements the CLI issues.
package ngql

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

var ErrEmptyIdentifier = errors.New("identifier must not be empty")

type SchemaKind string

const (
	KindTag  SchemaKind = "TAG"
	KindEdge SchemaKind = "EDGE"
)

func ParseSchemaKind(raw string) (SchemaKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(KindTag):
		return KindTag, nil
	case string(KindEdge):
		return KindEdge, nil
	default:
		return "", fmt.Errorf("unknown schema kind %q: want tag or edge", raw)
	}
}

type SpaceSpec struct {
	Name          string
	PartitionNum  int
	ReplicaFactor int
	// FixedStringLen selects FIXED_STRING(n) vertex ids; zero selects INT64.
	FixedStringLen int
	Comment        string
}

type Property struct {
	Name     string
	Type     string
	Nullable bool
	// Default is written as a quoted literal when set.
	Default string
	Comment string
}

type SchemaSpec struct {
	Kind       SchemaKind
	Name       string
	Properties []Property
	Comment    string
}

type IndexSpec struct {
	Kind   SchemaKind
	Name   string
	Schema string
	// Fields maps property names to an index prefix length; zero means none.
	Fields  map[string]int
	Comment string
}

type Vertex struct {
	Tag   string
	VID   string
	Props map[string]domain.Value
}

type Edge struct {
	Type  string
	Src   string
	Dst   string
	Rank  *int64
	Props map[string]domain.Value
}

func Use(space string) (string, error) {
	if err := requireIdentifiers(space); err != nil {
		return "", err
	}
	return fmt.Sprintf("USE %s;", quoteIdent(space)), nil
}

func ShowSpaces() string {
	return "SHOW SPACES;"
}

func ShowSchemas(kind SchemaKind) string {
	if kind == KindEdge {
		return "SHOW EDGES;"
	}
	return "SHOW TAGS;"
}

func CreateSpace(spec SpaceSpec) (string, error) {
	if err := requireIdentifiers(spec.Name); err != nil {
		return "", err
	}
	partitions := spec.PartitionNum
	if partitions <= 0 {
		partitions = 1
	}
	replicas := spec.ReplicaFactor
	if replicas <= 0 {
		replicas = 1
	}

	vidType := "INT64"
	if spec.FixedStringLen > 0 {
		vidType = fmt.Sprintf("FIXED_STRING(%d)", spec.FixedStringLen)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE SPACE IF NOT EXISTS %s (partition_num = %d, replica_factor = %d, vid_type = %s)",
		quoteIdent(spec.Name), partitions, replicas, vidType)
	writeComment(&b, " COMMENT = ", spec.Comment)
	b.WriteString(";")
	return b.String(), nil
}

func CreateSchema(spec SchemaSpec) (string, error) {
	if err := requireIdentifiers(string(spec.Kind), spec.Name); err != nil {
		return "", err
	}

	defs := make([]string, 0, len(spec.Properties))
	for _, prop := range spec.Properties {
		def, err := propertyDefinition(prop)
		if err != nil {
			return "", fmt.Errorf("%s %s: %w", strings.ToLower(string(spec.Kind)), spec.Name, err)
		}
		defs = append(defs, def)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE %s IF NOT EXISTS %s (%s)", spec.Kind, quoteIdent(spec.Name), strings.Join(defs, ", "))
	writeComment(&b, " COMMENT = ", spec.Comment)
	b.WriteString(";")
	return b.String(), nil
}

func propertyDefinition(prop Property) (string, error) {
	if err := requireIdentifiers(prop.Name, prop.Type); err != nil {
		return "", fmt.Errorf("property %q: %w", prop.Name, err)
	}

	parts := []string{quoteIdent(prop.Name), strings.ToLower(prop.Type)}
	if prop.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if prop.Default != "" {
		parts = append(parts, "DEFAULT "+strconv.Quote(prop.Default))
	}
	if prop.Comment != "" {
		parts = append(parts, "COMMENT "+strconv.Quote(prop.Comment))
	}
	return strings.Join(parts, " "), nil
}

func CreateIndex(spec IndexSpec) (string, error) {
	if err := requireIdentifiers(string(spec.Kind), spec.Name, spec.Schema); err != nil {
		return "", err
	}

	fields := make([]string, 0, len(spec.Fields))
	for _, name := range sortedKeys(spec.Fields) {
		if name == "" {
			return "", fmt.Errorf("index %s field: %w", spec.Name, ErrEmptyIdentifier)
		}
		field := quoteIdent(name)
		if length := spec.Fields[name]; length > 0 {
			field += fmt.Sprintf("(%d)", length)
		}
		fields = append(fields, field)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE %s INDEX IF NOT EXISTS %s ON %s(%s)", spec.Kind, quoteIdent(spec.Name), quoteIdent(spec.Schema), strings.Join(fields, ", "))
	writeComment(&b, " COMMENT ", spec.Comment)
	b.WriteString(";")
	return b.String(), nil
}

func InsertVertex(v Vertex) (string, error) {
	if err := requireIdentifiers(v.Tag, v.VID); err != nil {
		return "", err
	}

	names, values := propertyLists(v.Props)
	return fmt.Sprintf("INSERT VERTEX IF NOT EXISTS %s(%s) VALUES %s:(%s);",
		quoteIdent(v.Tag), names, strconv.Quote(v.VID), values), nil
}

func InsertEdge(e Edge) (string, error) {
	if err := requireIdentifiers(e.Type, e.Src, e.Dst); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s->%s", strconv.Quote(e.Src), strconv.Quote(e.Dst))
	if e.Rank != nil {
		endpoint += "@" + strconv.FormatInt(*e.Rank, 10)
	}

	names, values := propertyLists(e.Props)
	return fmt.Sprintf("INSERT EDGE IF NOT EXISTS %s(%s) VALUES %s:(%s);",
		quoteIdent(e.Type), names, endpoint, values), nil
}

func propertyLists(props map[string]domain.Value) (string, string) {
	keys := sortedKeys(props)
	names := make([]string, 0, len(keys))
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, quoteIdent(key))
		values = append(values, literal(props[key]))
	}
	return strings.Join(names, ", "), strings.Join(values, ", ")
}

func literal(v domain.Value) string {
	if v.Kind == domain.ValueNull || v.Kind == "" {
		return "NULL"
	}
	return v.String()
}

// ParseLiteral reads a command-line property value. Bare words that are not
// numbers, booleans or null become strings.
func ParseLiteral(raw string) domain.Value {
	trimmed := strings.TrimSpace(raw)
	if unquoted, err := strconv.Unquote(trimmed); err == nil {
		return domain.StringValue(unquoted)
	}
	if strings.EqualFold(trimmed, "null") {
		return domain.NullValue()
	}
	if b, err := strconv.ParseBool(trimmed); err == nil && strings.ContainsAny(trimmed[:1], "tTfF") {
		return domain.BoolValue(b)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return domain.IntValue(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return domain.FloatValue(f)
	}
	return domain.StringValue(raw)
}

func writeComment(b *strings.Builder, prefix, comment string) {
	if comment == "" {
		return
	}
	b.WriteString(prefix)
	b.WriteString(strconv.Quote(comment))
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}

func requireIdentifiers(values ...string) error {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return ErrEmptyIdentifier
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
