// Package mcp exposes the engine's document ingestion, task status, and
// filter-based document retrieval over the Model Context Protocol, so an
// AI client can drive the same operations the unix-socket daemon exposes
// to the CLI.
package mcp

import (
	"context"
	"errors"
	"fmt"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// Custom MCP error codes, in the same -3200x range the standard
// JSON-RPC codes leave free for application use.
const (
	ErrCodeEngineError = -32010

	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError is an MCP protocol error with a JSON-RPC-shaped code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	EngineCode string `json:"engine_code,omitempty"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts an engine error into an MCPError. *engerrors.EngineError
// values carry the closed error taxonomy (component I) through unchanged,
// via the same Envelope rendering the daemon's own dispatch path uses;
// anything else becomes an opaque internal error.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var ee *engerrors.EngineError
	if errors.As(err, &ee) {
		env := engerrors.ToEnvelope(ee)
		return &MCPError{
			Code:       ErrCodeEngineError,
			Message:    env.Message,
			EngineCode: env.Code,
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeInternalError, Message: "request timed out or was canceled"}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "an internal error occurred"}
	}
}

// NewInvalidParamsError builds an error for a malformed tool call before
// it ever reaches the handler (e.g. a required field left empty).
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
