package outfmt

import (
	"context"
	"encoding/json"
	"io"
	"reflect"

	"github.com/idmkit/idm-cli/internal/filter"
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

// WriteJSONFiltered writes JSON with optional jq filtering.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	v = wrapList(v)
	if query == "" {
		return WriteJSONMaybeCompact(w, v, compact)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	result, err := filter.ApplyFromJSON(data, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

// wrapList emits slices as {"items": [...]} so list output always has an
// object root; nil slices become empty lists instead of null.
func wrapList(v any) any {
	if v == nil {
		return v
	}
	if _, ok := v.(json.RawMessage); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return v
	}
	if rv.IsNil() {
		return map[string]any{"items": []any{}}
	}
	return map[string]any{"items": rv.Interface()}
}
