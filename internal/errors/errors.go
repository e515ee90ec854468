package errors

import "fmt"

// EngineError is the structured error type returned by every public
// operation of the engine. It carries a closed Code plus enough context
// to render the wire envelope {message, code, type, link}.
type EngineError struct {
	// Code identifies the failure mode; see codes.go.
	Code Code

	// Message is the human-readable message, safe to return to a caller.
	Message string

	// Details contains additional structured context (e.g. index_uid, task_id).
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code.Name(), e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *EngineError with the same Code.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && e.Code == t.Code
}

// WithDetail attaches a key-value detail and returns the error for chaining.
func (e *EngineError) WithDetail(key, value string) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an EngineError for the given code and message.
func New(code Code, message string, cause error) *EngineError {
	return &EngineError{Code: code, Message: message, Cause: cause}
}

// Wrap creates an EngineError from an existing error, reusing its message.
// Returns nil if err is nil, so it composes with early returns.
func Wrap(code Code, err error) *EngineError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Envelope is the wire shape returned to external callers.
type Envelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

// ToEnvelope renders err as the public error envelope. Non-EngineError
// values are reported as an opaque internal error, never leaking their
// message verbatim for errors that did not go through New/Wrap.
func ToEnvelope(err error) Envelope {
	if err == nil {
		return Envelope{}
	}
	ee, ok := err.(*EngineError)
	if !ok {
		return Envelope{
			Message: "an internal error occurred",
			Code:    CodeInternal.Name(),
			Type:    string(CategoryInternal),
			Link:    CodeInternal.DocURL(),
		}
	}
	return Envelope{
		Message: ee.Message,
		Code:    ee.Code.Name(),
		Type:    string(ee.Code.Category()),
		Link:    ee.Code.DocURL(),
	}
}

// GetCode extracts the Code from err, or CodeInternal if err is not an EngineError.
func GetCode(err error) Code {
	if ee, ok := err.(*EngineError); ok {
		return ee.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err's code denotes a "not found" condition.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case CodeIndexNotFound, CodeTaskNotFound, CodeDumpNotFound, CodeDocumentNotFound:
		return true
	default:
		return false
	}
}
