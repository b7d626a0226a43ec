package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the logical outcome reported by the graph server. It is
// orthogonal to transport success: a request can travel fine and still carry
// a failure code.
type ErrorCode int32

const (
	ErrorCodeSucceeded           ErrorCode = 0
	ErrorCodeDisconnected        ErrorCode = -1
	ErrorCodeFailToConnect       ErrorCode = -2
	ErrorCodeRPCFailure          ErrorCode = -3
	ErrorCodeBadUsernamePassword ErrorCode = -4
	ErrorCodeSessionInvalid      ErrorCode = -5
	ErrorCodeSessionTimeout      ErrorCode = -6
	ErrorCodeSyntaxError         ErrorCode = -7
	ErrorCodeExecutionError      ErrorCode = -8
	ErrorCodeStatementEmpty      ErrorCode = -9
	ErrorCodeUserNotFound        ErrorCode = -10
	ErrorCodeBadPermission       ErrorCode = -11
	ErrorCodeSemanticError       ErrorCode = -12
	ErrorCodeTooManyConnections  ErrorCode = -13
	ErrorCodePartialSucceeded    ErrorCode = -14
	ErrorCodeSpaceNotFound       ErrorCode = -15
	ErrorCodeUnknown             ErrorCode = -8000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeSucceeded:           "SUCCEEDED",
	ErrorCodeDisconnected:        "E_DISCONNECTED",
	ErrorCodeFailToConnect:       "E_FAIL_TO_CONNECT",
	ErrorCodeRPCFailure:          "E_RPC_FAILURE",
	ErrorCodeBadUsernamePassword: "E_BAD_USERNAME_PASSWORD",
	ErrorCodeSessionInvalid:      "E_SESSION_INVALID",
	ErrorCodeSessionTimeout:      "E_SESSION_TIMEOUT",
	ErrorCodeSyntaxError:         "E_SYNTAX_ERROR",
	ErrorCodeExecutionError:      "E_EXECUTION_ERROR",
	ErrorCodeStatementEmpty:      "E_STATEMENT_EMPTY",
	ErrorCodeUserNotFound:        "E_USER_NOT_FOUND",
	ErrorCodeBadPermission:       "E_BAD_PERMISSION",
	ErrorCodeSemanticError:       "E_SEMANTIC_ERROR",
	ErrorCodeTooManyConnections:  "E_TOO_MANY_CONNECTIONS",
	ErrorCodePartialSucceeded:    "E_PARTIAL_SUCCEEDED",
	ErrorCodeSpaceNotFound:       "E_SPACE_NOT_FOUND",
	ErrorCodeUnknown:             "E_UNKNOWN",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("E_CODE(%d)", int32(c))
}

// Error lets a code travel through the error channel and be matched with
// errors.Is.
func (c ErrorCode) Error() string {
	return c.String()
}

func (c ErrorCode) Succeeded() bool {
	return c == ErrorCodeSucceeded
}

// CodeOf collapses err into the code a caller should report.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorCodeSucceeded
	}

	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return ErrorCodeRPCFailure
	}

	return ErrorCodeUnknown
}

// ServerError pairs a server code with the message the server attached to it.
type ServerError struct {
	Code    ErrorCode
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServerError) Unwrap() error {
	return e.Code
}

// TransportError means the request never got a valid response.
type TransportError struct {
	Op      string
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
