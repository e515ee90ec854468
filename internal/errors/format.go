package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, includes the stable code and doc link.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	ee, ok := err.(*EngineError)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(ee.Message)

	if debug {
		sb.WriteString(fmt.Sprintf("\n\n[%s] %s", ee.Code.Name(), ee.Code.DocURL()))
	}

	return sb.String()
}

// FormatForCLI formats an error for CLI output. Uses a concise format
// suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ee, ok := err.(*EngineError)
	if !ok {
		ee = Wrap(CodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", ee.Message))
	sb.WriteString(fmt.Sprintf("  Code: %s\n", ee.Code.Name()))
	if len(ee.Details) > 0 {
		keys := make([]string, 0, len(ee.Details))
		for k := range ee.Details {
			keys = append(keys, k)
		}
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, ee.Details[k]))
		}
	}

	return sb.String()
}

// jsonError is the JSON representation of an error, matching the
// Envelope wire shape plus optional debug fields.
type jsonError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Category string            `json:"type"`
	Link     string            `json:"link"`
	Details  map[string]string `json:"details,omitempty"`
	Cause    string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error, suitable for
// machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ee, ok := err.(*EngineError)
	if !ok {
		ee = Wrap(CodeInternal, err)
	}

	je := jsonError{
		Code:     ee.Code.Name(),
		Message:  ee.Message,
		Category: string(ee.Code.Category()),
		Link:     ee.Code.DocURL(),
		Details:  ee.Details,
	}

	if ee.Cause != nil {
		je.Cause = ee.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ee, ok := err.(*EngineError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ee.Code.Name(),
		"message":    ee.Message,
		"category":   string(ee.Code.Category()),
	}

	if ee.Cause != nil {
		result["cause"] = ee.Cause.Error()
	}

	for k, v := range ee.Details {
		result["detail_"+k] = v
	}

	return result
}
