package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNoIdentity      = errors.New("no provider signature matched")
	ErrDatabase        = errors.New("database error")
	ErrInternal        = errors.New("internal error")
)

// ExtractionError is the terminal failure of one document's extraction:
// every fallback stage was exhausted without producing line items, or no
// grand-total pattern matched. It always carries the document identity and
// a description of the best attempt made.
type ExtractionError struct {
	Document string // path or handle of the PDF
	Provider string // grammar that was asked to extract
	Stage    string // last stage attempted
	Message  string // summary of the best attempt
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for %s (provider=%s, stage=%s): %s: %v",
			e.Document, e.Provider, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed for %s (provider=%s, stage=%s): %s",
		e.Document, e.Provider, e.Stage, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError builds an ExtractionError for a document.
func NewExtractionError(document, provider, stage, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Document: document,
		Provider: provider,
		Stage:    stage,
		Message:  message,
		Cause:    cause,
	}
}

// IdentificationError means no registered grammar's signature matched the
// document text. Only raised when auto-detection is used.
type IdentificationError struct {
	Document string
}

func (e *IdentificationError) Error() string {
	return fmt.Sprintf("no provider signature matched document %s", e.Document)
}

func (e *IdentificationError) Unwrap() error {
	return ErrNoIdentity
}

// AppError attaches a stable code to an underlying cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
