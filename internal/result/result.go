// Package result defines the outcome of a single API call.
package result

import (
	"fmt"
	"strings"

	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/filter"
	"github.com/singlebase/singlebase-go/internal/jsonext"
)

// Result is the outcome of an API call. OK is true only for values built by
// Success; Error is set only for values built by Failure.
type Result struct {
	Data       map[string]any `json:"data"`
	Meta       map[string]any `json:"meta"`
	OK         bool           `json:"ok"`
	Error      string         `json:"error,omitempty"`
	StatusCode int            `json:"status_code"`
}

// Success builds a successful Result. Nil maps are replaced by empty ones.
func Success(data, meta map[string]any, statusCode int) *Result {
	if data == nil {
		data = map[string]any{}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &Result{Data: data, Meta: meta, OK: true, StatusCode: statusCode}
}

// Failure builds a failed Result with empty data and meta.
func Failure(message string, statusCode int) *Result {
	return &Result{
		Data:       map[string]any{},
		Meta:       map[string]any{},
		Error:      message,
		StatusCode: statusCode,
	}
}

// Get walks Data along a dotted path. An empty path returns Data itself.
// def is returned when a key is absent at any depth; a non-mapping value
// in the middle of the path yields a *apierrors.TraversalTypeError.
func (r *Result) Get(path string, def any) (any, error) {
	if path == "" {
		return r.Data, nil
	}

	var cur any = r.Data
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &apierrors.TraversalTypeError{Path: path, Key: key, Got: cur}
		}
		v, found := m[key]
		if !found {
			return def, nil
		}
		cur = v
	}
	return cur, nil
}

// ToMap returns the Result as a plain mapping.
func (r *Result) ToMap() map[string]any {
	m := map[string]any{
		"data":        r.Data,
		"meta":        r.Meta,
		"ok":          r.OK,
		"status_code": r.StatusCode,
	}
	if !r.OK {
		m["error"] = r.Error
	}
	return m
}

func (r *Result) String() string {
	return fmt.Sprintf("<Result ok=%t status=%d error=%s>", r.OK, r.StatusCode, r.Error)
}

// Err returns nil for a successful Result and a *apierrors.RemoteError otherwise.
func (r *Result) Err() error {
	if r.OK {
		return nil
	}
	return &apierrors.RemoteError{StatusCode: r.StatusCode, Message: r.Error}
}

// Query evaluates a jq expression against the Result's mapping form.
// Date-time values are seen by the expression as ISO-8601 strings.
func (r *Result) Query(expr string) (any, error) {
	encoded, err := jsonext.Encode(r.ToMap())
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON([]byte(encoded), expr)
}
