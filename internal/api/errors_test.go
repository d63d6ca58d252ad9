package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewFlowNotFoundError("Order Sync")
	assert.Equal(t, "flow Order Sync not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestAmbiguousReferenceError(t *testing.T) {
	err := &AmbiguousReferenceError{
		Reference: "order",
		Candidates: []FlowSummary{
			{ID: "1", Name: "Order Sync"},
			{ID: "2", Name: "Order Export"},
		},
	}
	assert.True(t, IsAmbiguousReference(err))
	assert.Contains(t, err.Error(), "Order Sync (1)")
	assert.Contains(t, err.Error(), "Order Export (2)")
}

func TestTransportError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &TransportError{Op: "list_flows", Target: "/flows", StatusCode: 502, Err: underlying}

	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "list_flows")
}

func TestRunStatusString(t *testing.T) {
	assert.Equal(t, "failure", RunFailure.String())
	assert.Equal(t, "partial_success", RunPartialSuccess.String())
	assert.Equal(t, "unknown", RunStatus(9).String())
}

func TestHandleError(t *testing.T) {
	result := HandleError(errors.New("boom"))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0], "boom")

	result = HandleErrorWithPrefix(errors.New("boom"), "Failed to list flows")
	assert.Equal(t, "Failed to list flows: boom", result.Content[0])
}
