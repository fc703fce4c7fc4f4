package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

type Request struct {
	*http.Request
}

func NewRequest(ctx context.Context, method, url string, body io.Reader) (*Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	return &Request{request}, nil
}

// NewJSONRequest marshals payload as the request body. A nil payload sends
// no body at all.
func NewJSONRequest(ctx context.Context, method, url string, payload interface{}) (*Request, error) {
	if payload == nil {
		return NewRequest(ctx, method, url, nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Errorf("Cannot marshall payload: %s", err)
	}

	request, err := NewRequest(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Add("Content-Type", "application/json; charset=UTF-8")
	return request, nil
}
