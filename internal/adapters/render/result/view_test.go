package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func TestRenderTable(t *testing.T) {
	output, err := Render(domain.ExecutionResult{
		SpaceName: "basketball",
		Latency:   1500 * time.Microsecond,
		Data: &domain.DataSet{
			ColumnNames: []string{"name", "age", "retired"},
			Rows: []domain.Row{
				{Values: []domain.Value{domain.StringValue("Tim Duncan"), domain.IntValue(42), domain.BoolValue(true)}},
				{Values: []domain.Value{domain.StringValue("Luka"), domain.NullValue(), domain.BoolValue(false)}},
			},
		},
	}, RenderOptions{Statement: "MATCH (v:player) RETURN v"})

	require.NoError(t, err)
	assert.Contains(t, output, "> MATCH (v:player) RETURN v")
	assert.Contains(t, output, "name")
	assert.Contains(t, output, "retired")
	assert.Contains(t, output, "Tim Duncan")
	assert.NotContains(t, output, `"Tim Duncan"`)
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "__NULL__")
	assert.Contains(t, output, "Got 2 rows")
	assert.Contains(t, output, "basketball")
	assert.Contains(t, output, "latency: 1.5ms")
}

func TestRenderEmptySet(t *testing.T) {
	output, err := Render(domain.ExecutionResult{
		SpaceName: "test",
		Data:      &domain.DataSet{ColumnNames: []string{"Name"}},
	}, RenderOptions{HideLatency: true})

	require.NoError(t, err)
	assert.Contains(t, output, "Empty set")
	assert.Contains(t, output, "Got 0 rows")
	assert.NotContains(t, output, "latency")
}

func TestRenderWithoutDataSet(t *testing.T) {
	output, err := Render(domain.ExecutionResult{Latency: 250 * time.Microsecond}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Execution succeeded")
	assert.Contains(t, output, "latency: 250us")
}

func TestRenderServerFailure(t *testing.T) {
	output, err := Render(domain.ExecutionResult{
		Code:     domain.ErrorCodeSemanticError,
		ErrorMsg: "Space was not chosen.",
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "[ERROR (-12)]: Space was not chosen.")
	assert.NotContains(t, output, "Got")
}

func TestRowsLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Got 1 row", rowsLabel(1))
	assert.Equal(t, "Got 3 rows", rowsLabel(3))
}
