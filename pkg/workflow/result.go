package workflow

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Result is the displayable outcome of an execution request.
// Exactly one of Output or Error is meant for the user.
type Result struct {
	// Status is the backend's status tag, e.g. "success".
	Status string `json:"status,omitempty"`
	// Output is the text to show. Structured results are rendered as indented JSON.
	Output string `json:"output"`
	// Value is the decoded "result" field.
	Value any `json:"value,omitempty"`
	// History is the backend's "full_history", if any.
	History []any `json:"full_history,omitempty"`
	// Raw holds a response body whose shape was not recognized.
	Raw any `json:"raw,omitempty"`
	// Error is a human-readable failure message.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Error != "" }

// Display returns the text a user should see.
func (r Result) Display() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Output
}

// ErrorResult builds a failed result.
func ErrorResult(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Deserialize decodes an execution response. It never fails; an unparseable
// body produces a Result with Error set and the raw text kept in Raw.
func Deserialize(body []byte) Result {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return Result{Error: fmt.Sprintf("invalid execution response: %v", err), Raw: string(body)}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Result{Output: render(v), Raw: v}
	}
	value, ok := obj["result"]
	if !ok {
		return Result{Output: render(v), Raw: v}
	}

	res := Result{Output: render(value), Value: value}
	if s, ok := obj["status"].(string); ok {
		res.Status = s
	}
	if h, ok := obj["full_history"].([]any); ok {
		res.History = h
	}
	return res
}

// render returns strings verbatim and anything else as indented JSON.
func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
