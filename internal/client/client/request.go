package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/common"
)

// Request is a fully buffered call description so it can be replayed after
// a token refresh or a base URL rebind.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	Accept      string
}

// JSONRequest encodes body (when non-nil) as JSON.
func JSONRequest(method, path string, body any) (Request, error) {
	r := Request{Method: method, Path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r.Body = b
		r.ContentType = common.ContentTypeJSON
	}
	return r, nil
}

func (r Request) url(base string) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	path       string
}

// Validator is implemented by payloads that check themselves after decoding.
type Validator interface {
	Validate() error
}

// JSON decodes the body into v and validates it when v is a Validator.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodeError{Path: r.path, Err: err}
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return &DecodeError{Path: r.path, Err: err}
		}
	}
	return nil
}

// tokenPair returns both tokens when the body is a JSON object carrying them.
func (r *Response) tokenPair() (string, string, bool) {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 || body[0] != '{' {
		return "", "", false
	}
	var t struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if json.Unmarshal(body, &t) != nil || t.AccessToken == "" || t.RefreshToken == "" {
		return "", "", false
	}
	return t.AccessToken, t.RefreshToken, true
}
