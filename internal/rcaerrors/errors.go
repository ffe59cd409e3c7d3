// Package rcaerrors defines the error-kind taxonomy shared across every
// pipeline stage, so the API server and CLI can report a consistent status
// regardless of which phase failed.
package rcaerrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies why a pipeline stage failed.
type Kind string

const (
	// KindInput covers malformed or insufficient investigation input, e.g.
	// an unresolvable resource reference or an unparsable time range.
	KindInput Kind = "input_error"

	// KindCredential covers AWS/LLM authentication and authorization
	// failures: expired tokens, AssumeRole denial, missing API keys.
	KindCredential Kind = "credential_error"

	// KindInsufficientData covers the case where every reachable tool
	// returned no usable evidence for the claimed incident.
	KindInsufficientData Kind = "insufficient_data"

	// KindTool covers a tool invocation that failed for reasons other than
	// credentials or a deadline, e.g. a malformed cloud API response.
	KindTool Kind = "tool_error"

	// KindLLM covers provider failures or unparsable model output across
	// the hypothesis, root-cause, and severity phases.
	KindLLM Kind = "llm_error"

	// KindDeadline covers a context deadline exceeded at the
	// investigation, collector, or per-tool level.
	KindDeadline Kind = "deadline_exceeded"

	// KindInternal covers programming errors and invariant violations that
	// should never surface to a caller's decision-making.
	KindInternal Kind = "internal_error"
)

// httpStatus maps each Kind to the status code the API server reports.
var httpStatus = map[Kind]int{
	KindInput:             http.StatusBadRequest,
	KindCredential:         http.StatusUnauthorized,
	KindInsufficientData:   http.StatusUnprocessableEntity,
	KindTool:               http.StatusBadGateway,
	KindLLM:                http.StatusBadGateway,
	KindDeadline:           http.StatusGatewayTimeout,
	KindInternal:           http.StatusInternalServerError,
}

// Error is the concrete error type produced by every pipeline stage.
type Error struct {
	Kind    Kind
	Message string
	Stage   string                 // e.g. "evidence", "hypothesis", "rootcause"
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the status code the API server should report for e.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithDetail attaches additional structured context and returns e.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newf(kind Kind, stage, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

func Input(stage, format string, args ...interface{}) *Error {
	return newf(KindInput, stage, format, args...)
}

func Credential(stage, format string, args ...interface{}) *Error {
	return newf(KindCredential, stage, format, args...)
}

func InsufficientData(stage, format string, args ...interface{}) *Error {
	return newf(KindInsufficientData, stage, format, args...)
}

func Tool(stage, format string, args ...interface{}) *Error {
	return newf(KindTool, stage, format, args...)
}

func LLM(stage, format string, args ...interface{}) *Error {
	return newf(KindLLM, stage, format, args...)
}

func Deadline(stage, format string, args ...interface{}) *Error {
	return newf(KindDeadline, stage, format, args...)
}

func Internal(stage, format string, args ...interface{}) *Error {
	return newf(KindInternal, stage, format, args...)
}

// Wrap converts a generic error from a dependency (AWS SDK, LLM client,
// context) into a KindInternal *Error, preserving it as Cause; the error
// is not inspected further to pick another Kind. If err is already an
// *Error it is returned unchanged.
func Wrap(stage string, err error) *Error {
	if err == nil {
		return nil
	}
	var rcaErr *Error
	if stderrors.As(err, &rcaErr) {
		return rcaErr
	}
	return &Error{Kind: KindInternal, Stage: stage, Message: err.Error(), Cause: err}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var rcaErr *Error
	if !stderrors.As(err, &rcaErr) {
		return false
	}
	return rcaErr.Kind == kind
}
