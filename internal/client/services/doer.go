// Package services maps client operations onto backend endpoints. Services
// are stateless: they build requests, send them through a Doer and decode
// the validated payloads.
package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
)

var (
	ErrLocalMode        = errors.New("authentication is disabled in local mode")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// Doer executes a request under the client's session policy.
// *client.HTTPClient implements it.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

func call[T any](ctx context.Context, d Doer, r client.Request) (T, error) {
	var out T
	resp, err := d.Do(ctx, r)
	if err != nil {
		return out, err
	}
	if err := resp.JSON(&out); err != nil {
		return out, err
	}
	return out, nil
}

func callJSON[T any](ctx context.Context, d Doer, method, path string, body any) (T, error) {
	r, err := client.JSONRequest(method, path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return call[T](ctx, d, r)
}

func get[T any](ctx context.Context, d Doer, path string, q url.Values) (T, error) {
	return call[T](ctx, d, client.Request{Method: http.MethodGet, Path: path, Query: q})
}

// seg escapes a single path segment.
func seg(s string) string {
	return url.PathEscape(s)
}
