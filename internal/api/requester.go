package api

import (
	"bytes"
	"context"
	"encoding/json"
)

// PathResolver resolves route-group relative paths against the prefix table
// fixed at construction.
//
// Example: with the default v1 table, prefix(GroupAuth, "/login") returns
// "/api/v1/idm/auth/login".
type PathResolver interface {
	prefix(group RouteGroup, path string) string
}

// HTTPExecutor sends one request through the client's dispatch routine.
// The body is marshaled to JSON if non-nil and the response is unmarshaled
// into result if non-nil. op names the operation for observers and logs.
type HTTPExecutor interface {
	do(ctx context.Context, op, method, path string, body any, result any) error
}

// Requester combines PathResolver and HTTPExecutor and is the surface the
// service types depend on. Tests can substitute either half independently.
type Requester interface {
	PathResolver
	HTTPExecutor
}

// call sends one request through h and decodes the body into a new T.
// A response without a payload (204, an empty body or a JSON null) yields
// nil with no error, so callers can tell it apart from an empty object.
func call[T any](ctx context.Context, h HTTPExecutor, op, method, path string, body any) (*T, error) {
	var result optional[T]
	if err := h.do(ctx, op, method, path, body, &result); err != nil {
		return nil, err
	}
	return result.value, nil
}

// optional records whether the decoder saw a payload at all.
type optional[T any] struct{ value *T }

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}
