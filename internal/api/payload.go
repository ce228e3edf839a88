package api

import "github.com/singlebase/singlebase-go/internal/apierrors"

// Payload is an operation request body. The "op" field is required; every
// other field is passed through untouched.
type Payload map[string]any

// Op returns the operation name, or "" when op is absent or not a string.
func (p Payload) Op() string {
	op, _ := p["op"].(string)
	return op
}

// ValidatePayload reports a *apierrors.ValidationError unless p carries a
// non-empty string op.
func ValidatePayload(p Payload) error {
	if p == nil {
		return &apierrors.ValidationError{Reason: "payload must be a mapping"}
	}
	op, ok := p["op"]
	if !ok || op == nil {
		return &apierrors.ValidationError{Field: "op", Reason: "missing"}
	}
	s, ok := op.(string)
	if !ok {
		return &apierrors.ValidationError{Field: "op", Reason: "non-string"}
	}
	if s == "" {
		return &apierrors.ValidationError{Field: "op", Reason: "missing"}
	}
	return nil
}
