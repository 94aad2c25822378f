package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Kind    error
	Code    codes.Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// GRPCStatus lets status.FromError / status.Code read the code directly.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

// Error kinds
var (
	ErrNotConfigured         = errors.New("not configured")
	ErrUpstream              = errors.New("upstream llm error")
	ErrInvalidResponseFormat = errors.New("invalid response format")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternal              = errors.New("internal error")
)

// InvalidResponseMessage is matched on by callers and tests; keep it stable.
const InvalidResponseMessage = "Failed to parse response from AI model"

// Error constructors
func NewAppError(kind error, code codes.Code, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NotConfiguredError(message string) error {
	return NewAppError(ErrNotConfigured, codes.FailedPrecondition, message, nil)
}

// UpstreamError wraps a transport or provider failure. Deadline expiry keeps its
// own code so the boundary can answer 504 instead of 500.
func UpstreamError(message string, cause error) error {
	code := codes.Unavailable
	if errors.Is(cause, context.DeadlineExceeded) {
		code = codes.DeadlineExceeded
	}
	return NewAppError(ErrUpstream, code, message, cause)
}

// InvalidResponseFormatError wraps the original parse failure.
func InvalidResponseFormatError(cause error) error {
	return NewAppError(ErrInvalidResponseFormat, codes.Internal, InvalidResponseMessage, cause)
}

// InternalError reports a local failure that is not the caller's fault.
func InternalError(message string, cause error) error {
	return NewAppError(ErrInternal, codes.Internal, message, cause)
}

func InvalidArgumentError(message string) error {
	return NewAppError(ErrInvalidInput, codes.InvalidArgument, message, nil)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the code carried by err, codes.Internal for unknown errors.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

// HTTPStatus maps an error to the HTTP status the API answers with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		// client went away; nginx convention
		return 499
	default:
		return http.StatusInternalServerError
	}
}
