package outfmt

import (
	"context"
	"io"
	"reflect"

	"github.com/singlebase/singlebase-go/internal/filter"
	"github.com/singlebase/singlebase-go/internal/jsonext"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

type mapper interface {
	ToMap() map[string]any
}

// Normalize converts v into plain JSON values: date-times become ISO-8601
// strings and top-level slices are wrapped as {"items": [...]} so that
// queries like .items[] always work.
func Normalize(v any) (any, error) {
	if m, ok := v.(mapper); ok {
		v = m.ToMap()
	}
	v = wrapSlice(v)

	encoded, err := jsonext.Encode(v)
	if err != nil {
		return nil, err
	}
	return filter.DecodeJSON([]byte(encoded))
}

func wrapSlice(v any) any {
	if v == nil {
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return v
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return map[string]any{"items": []any{}}
	}
	return map[string]any{"items": v}
}

// ApplyQuery normalizes v and applies query to it.
func ApplyQuery(v any, query string) (any, error) {
	normalized, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	return filter.Apply(normalized, query)
}

// WriteJSONFiltered writes v as JSON after applying the optional query.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	out, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSON(w, out, compact)
}
