package domain

import (
	"strconv"
	"time"
)

type AuthResult struct {
	Code      ErrorCode
	ErrorMsg  string
	SessionID int64
	// TimeZoneName is empty when the server zone is not a named one.
	TimeZoneName          string
	TimeZoneOffsetSeconds int32
}

type ExecutionResult struct {
	Code      ErrorCode
	ErrorMsg  string
	SpaceName string
	Latency   time.Duration
	Comment   string
	Data      *DataSet
}

// Err returns nil when the server reported success.
func (r ExecutionResult) Err() error {
	if r.Code.Succeeded() {
		return nil
	}
	return &ServerError{Code: r.Code, Message: r.ErrorMsg}
}

func (r ExecutionResult) RowCount() int {
	if r.Data == nil {
		return 0
	}
	return len(r.Data.Rows)
}

// ColumnStrings returns the string values found in the named column, in row order.
func (r ExecutionResult) ColumnStrings(column string) []string {
	if r.Data == nil {
		return nil
	}

	index := r.Data.ColumnIndex(column)
	if index < 0 {
		return nil
	}

	values := make([]string, 0, len(r.Data.Rows))
	for _, row := range r.Data.Rows {
		if index >= len(row.Values) {
			continue
		}
		if v := row.Values[index]; v.Kind == ValueString {
			values = append(values, v.Str)
		}
	}

	return values
}

type DataSet struct {
	ColumnNames []string `json:"column_names"`
	Rows        []Row    `json:"rows"`
}

func (d *DataSet) ColumnIndex(name string) int {
	for i, column := range d.ColumnNames {
		if column == name {
			return i
		}
	}
	return -1
}

type Row struct {
	Values []Value `json:"values"`
}

type ValueKind string

const (
	ValueNull   ValueKind = "null"
	ValueBool   ValueKind = "bool"
	ValueInt    ValueKind = "int"
	ValueFloat  ValueKind = "float"
	ValueString ValueKind = "string"
)

type Value struct {
	Kind  ValueKind `json:"kind"`
	Bool  bool      `json:"bool,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Str   string    `json:"str,omitempty"`
}

func NullValue() Value { return Value{Kind: ValueNull} }
func BoolValue(v bool) Value { return Value{Kind: ValueBool, Bool: v} }
func IntValue(v int64) Value { return Value{Kind: ValueInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }
func StringValue(v string) Value { return Value{Kind: ValueString, Str: v} }

func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case ValueString:
		return strconv.Quote(v.Str)
	default:
		return "__NULL__"
	}
}
