package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a resource not found on the platform.
type NotFoundError struct {
	// ResourceType categorizes the resource (e.g. "flow", "run", "payload")
	ResourceType string

	// ResourceName is the identifier or reference that did not resolve
	ResourceName string

	// Message overrides the default format when set
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// Typed NotFoundError constructors for the resources flowbridge deals with.
var (
	NewFlowNotFoundError = func(ref string) *NotFoundError {
		return NewNotFoundError("flow", ref)
	}

	NewRunNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("run", id)
	}

	NewPayloadNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("payload", id)
	}
)

// AmbiguousReferenceError indicates a natural-language flow reference that
// matched more than one flow equally well. It carries the candidate list so
// the caller can disambiguate instead of flowbridge guessing.
type AmbiguousReferenceError struct {
	Reference  string
	Candidates []FlowSummary
}

// Error implements the error interface.
func (e *AmbiguousReferenceError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.ID)
	}
	return fmt.Sprintf("reference %q matches multiple flows: %s", e.Reference, strings.Join(names, ", "))
}

// IsAmbiguousReference checks if an error is or wraps an AmbiguousReferenceError.
func IsAmbiguousReference(err error) bool {
	var ambiguousErr *AmbiguousReferenceError
	return errors.As(err, &ambiguousErr)
}

// TransportError represents a transient network, timeout or auth failure
// talking to the platform. It carries enough context for the caller to
// retry or report precisely.
type TransportError struct {
	// Op is the platform operation that failed (e.g. "list_flows")
	Op string

	// Target is the id or path the operation addressed
	Target string

	// StatusCode is the HTTP status, when a response was received
	StatusCode int

	// Err is the underlying failure
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("platform %s %s: HTTP %d: %v", e.Op, e.Target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("platform %s %s: %v", e.Op, e.Target, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport checks if an error is or wraps a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// Handler-not-registered errors for the handler registry.
var (
	// ErrPlatformNotRegistered indicates the platform handler is not registered
	ErrPlatformNotRegistered = errors.New("platform handler not registered")

	// ErrFlowBuilderNotRegistered indicates the flow builder handler is not registered
	ErrFlowBuilderNotRegistered = errors.New("flow builder handler not registered")

	// ErrInvestigatorNotRegistered indicates the investigator handler is not registered
	ErrInvestigatorNotRegistered = errors.New("investigator handler not registered")
)

// HandleError creates an error CallToolResult from an error.
// Tool handlers return structured errors to the driver, never raw panics
// or bare strings without the underlying cause.
func HandleError(err error) *CallToolResult {
	return &CallToolResult{
		Content: []interface{}{fmt.Sprintf("operation failed: %v", err)},
		IsError: true,
	}
}

// HandleErrorWithPrefix creates an error CallToolResult with a custom prefix.
func HandleErrorWithPrefix(err error, prefix string) *CallToolResult {
	return &CallToolResult{
		Content: []interface{}{fmt.Sprintf("%s: %v", prefix, err)},
		IsError: true,
	}
}
