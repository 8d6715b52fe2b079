package errors

import (
	"faucetd/jsonx"
)

// FaucetErrorCode represents standardized error codes for faucet operations
type FaucetErrorCode string

const (
	// General errors
	ErrCodeInternal FaucetErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest  FaucetErrorCode = "invalid_request"
	ErrCodeInvalidIdentity FaucetErrorCode = "invalid_identity"

	// Authorization errors
	ErrCodeUnauthorized FaucetErrorCode = "unauthorized"

	// Claim errors
	ErrCodeFaucetDisabled FaucetErrorCode = "faucet_disabled"
	ErrCodeInvalidCode    FaucetErrorCode = "invalid_code"
	ErrCodeAlreadyClaimed FaucetErrorCode = "already_claimed"

	// Lifecycle errors
	ErrCodeSnapshotFailure FaucetErrorCode = "snapshot_failure"
)

// FaucetError represents a standardized faucet error
type FaucetError struct {
	Code    FaucetErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *FaucetError) Error() string {
	err, _ := jsonx.Marshal(FaucetError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest  = "Request format is invalid"
	ErrMsgInvalidIdentity = "Caller identity is invalid"
	ErrMsgUnauthorized    = "Caller is not an authorized admin"
	ErrMsgFaucetDisabled  = "Faucet is currently disabled"
	ErrMsgInvalidCode     = "Claim code is invalid"
	ErrMsgAlreadyClaimed  = "Identity has already claimed from the faucet"
	ErrMsgSnapshotFailure = "Faucet state snapshot failed"
	ErrMsgInternal        = "Internal server error occurred"
)

// NewFaucetError creates a new faucet error with the given code and message
func NewFaucetError(code FaucetErrorCode, message string) *FaucetError {
	return &FaucetError{
		Code:    code,
		Message: message,
	}
}

// Predefined error constructors keep call sites terse.

func NewUnauthorizedError() *FaucetError {
	return NewFaucetError(ErrCodeUnauthorized, ErrMsgUnauthorized)
}

func NewFaucetDisabledError() *FaucetError {
	return NewFaucetError(ErrCodeFaucetDisabled, ErrMsgFaucetDisabled)
}

func NewInvalidCodeError() *FaucetError {
	return NewFaucetError(ErrCodeInvalidCode, ErrMsgInvalidCode)
}

func NewAlreadyClaimedError() *FaucetError {
	return NewFaucetError(ErrCodeAlreadyClaimed, ErrMsgAlreadyClaimed)
}

func NewInvalidIdentityError() *FaucetError {
	return NewFaucetError(ErrCodeInvalidIdentity, ErrMsgInvalidIdentity)
}

func NewInvalidRequestError(message string) *FaucetError {
	if message == "" {
		message = ErrMsgInvalidRequest
	}
	return NewFaucetError(ErrCodeInvalidRequest, message)
}

func NewSnapshotFailureError(message string) *FaucetError {
	if message == "" {
		message = ErrMsgSnapshotFailure
	}
	return NewFaucetError(ErrCodeSnapshotFailure, message)
}

// IsCode reports whether err is a FaucetError carrying the given code.
func IsCode(err error, code FaucetErrorCode) bool {
	fe, ok := err.(*FaucetError)
	return ok && fe.Code == code
}
