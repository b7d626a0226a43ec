// Package wsrpc carries graph sessions over JSON frames on a websocket.
//
// Each request frame gets exactly one response frame with the same id. A
// connection has at most one request in flight.
package wsrpc

import (
	"encoding/json"
	"time"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

const (
	MethodAuthenticate = "authenticate"
	MethodExecute      = "execute"
	MethodSignout      = "signout"

	DefaultPath = "/rpc"
)

type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RPCError is a failure of the call itself, never a server status code.
type RPCError struct {
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return "rpc: " + e.Message
}

type AuthenticateParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthenticateResult struct {
	ErrorCode             int32  `json:"error_code"`
	ErrorMsg              string `json:"error_msg,omitempty"`
	SessionID             int64  `json:"session_id,omitempty"`
	TimeZoneName          string `json:"time_zone_name,omitempty"`
	TimeZoneOffsetSeconds int32  `json:"time_zone_offset_seconds,omitempty"`
}

type ExecuteParams struct {
	SessionID int64  `json:"session_id"`
	Statement string `json:"statement"`
}

type ExecuteResult struct {
	ErrorCode     int32           `json:"error_code"`
	ErrorMsg      string          `json:"error_msg,omitempty"`
	SpaceName     string          `json:"space_name,omitempty"`
	LatencyMicros int64           `json:"latency_in_us"`
	Comment       string          `json:"comment,omitempty"`
	Data          *domain.DataSet `json:"data,omitempty"`
}

type SignoutParams struct {
	SessionID int64 `json:"session_id"`
}

func encodeAuth(r domain.AuthResult) AuthenticateResult {
	return AuthenticateResult{
		ErrorCode:             int32(r.Code),
		ErrorMsg:              r.ErrorMsg,
		SessionID:             r.SessionID,
		TimeZoneName:          r.TimeZoneName,
		TimeZoneOffsetSeconds: r.TimeZoneOffsetSeconds,
	}
}

func decodeAuth(r AuthenticateResult) domain.AuthResult {
	return domain.AuthResult{
		Code:                  domain.ErrorCode(r.ErrorCode),
		ErrorMsg:              r.ErrorMsg,
		SessionID:             r.SessionID,
		TimeZoneName:          r.TimeZoneName,
		TimeZoneOffsetSeconds: r.TimeZoneOffsetSeconds,
	}
}

func encodeExecution(r domain.ExecutionResult) ExecuteResult {
	return ExecuteResult{
		ErrorCode:     int32(r.Code),
		ErrorMsg:      r.ErrorMsg,
		SpaceName:     r.SpaceName,
		LatencyMicros: r.Latency.Microseconds(),
		Comment:       r.Comment,
		Data:          r.Data,
	}
}

func decodeExecution(r ExecuteResult) domain.ExecutionResult {
	return domain.ExecutionResult{
		Code:      domain.ErrorCode(r.ErrorCode),
		ErrorMsg:  r.ErrorMsg,
		SpaceName: r.SpaceName,
		Latency:   time.Duration(r.LatencyMicros) * time.Microsecond,
		Comment:   r.Comment,
		Data:      r.Data,
	}
}
