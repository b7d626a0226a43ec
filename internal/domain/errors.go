package domain

import "errors"

var (
	ErrNoAddresses        = errors.New("at least one server address is required")
	ErrInvalidPoolSize    = errors.New("min pool size must not exceed max pool size")
	ErrPoolExhausted      = errors.New("pool exhausted: no connection available")
	ErrPoolClosed         = errors.New("pool is closed")
	ErrSessionClosed      = errors.New("session is closed")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrCredentialNotFound = errors.New("credential not found")
)
