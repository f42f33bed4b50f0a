package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calvinalkan/taskvault/internal/entity"
)

// requiredStateKeys must all be present at the top level of a serialized
// state. Search/filter keys are optional; their absence is an old snapshot,
// not corruption.
var requiredStateKeys = []string{
	"tasks", "projects", "goals", "analytics", "userSettings", "authentication",
}

// DecodeError is returned by Deserialize for any parse, shape, or schema
// failure. Callers treat it as a single "corrupted snapshot" class; the
// persistence layer self-heals on it instead of propagating.
type DecodeError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := "failed to deserialize application state: " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError

	return errors.As(err, &decodeErr)
}

// Serialize converts a state snapshot to its durable string form.
// A nil state serializes to the literal "null"; callers that persist it get
// the self-heal path on the next load.
func Serialize(state *entity.AppState) (string, error) {
	if state == nil {
		return "null", nil
	}

	data, err := json.Marshal(encodeState(state).toJSON())
	if err != nil {
		return "", fmt.Errorf("serialize application state: %w", err)
	}

	return string(data), nil
}

// Deserialize parses a durable string back into a state snapshot.
// Every failure mode (bad JSON, non-object top level, missing required keys,
// malformed fields) surfaces as a *DecodeError.
func Deserialize(data string) (*entity.AppState, error) {
	var raw any

	err := json.Unmarshal([]byte(data), &raw)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Cause: err}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("top-level value is %T, not an object", raw)}
	}

	for _, key := range requiredStateKeys {
		if _, present := obj[key]; !present {
			return nil, &DecodeError{Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	value, err := fromJSON(obj)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed value tree", Cause: err}
	}

	state, err := decodeState(value)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed state", Cause: err}
	}

	return state, nil
}
