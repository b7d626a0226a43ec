package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionResultErr(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ExecutionResult{Code: ErrorCodeSucceeded}.Err())

	err := ExecutionResult{Code: ErrorCodeSyntaxError, ErrorMsg: "syntax error near `SHOW`"}.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorCodeSyntaxError)
}

func TestExecutionResultColumnStrings(t *testing.T) {
	t.Parallel()

	result := ExecutionResult{Data: &DataSet{
		ColumnNames: []string{"Name", "Count"},
		Rows: []Row{
			{Values: []Value{StringValue("person"), IntValue(3)}},
			{Values: []Value{StringValue("company"), IntValue(1)}},
			{Values: []Value{NullValue(), IntValue(0)}},
		},
	}}

	assert.Equal(t, []string{"person", "company"}, result.ColumnStrings("Name"))
	assert.Empty(t, result.ColumnStrings("Count"))
	assert.Nil(t, result.ColumnStrings("Missing"))
	assert.Equal(t, 3, result.RowCount())
	assert.Nil(t, ExecutionResult{}.ColumnStrings("Name"))
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "null", value: NullValue(), want: "__NULL__"},
		{name: "bool", value: BoolValue(true), want: "true"},
		{name: "int", value: IntValue(-7), want: "-7"},
		{name: "float", value: FloatValue(1.5), want: "1.5"},
		{name: "string", value: StringValue("a\"b"), want: `"a\"b"`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.value.String())
		})
	}
}
