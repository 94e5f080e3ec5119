package httpx

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

const maxBody = 1 << 20

var ErrBodyTooLarge = errors.New("request body too large")

// ReadBody reads the request body, at most 1MB, and puts back a copy so
// that later handlers can read it again. Larger bodies fail with
// ErrBodyTooLarge.
func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBody {
		return nil, ErrBodyTooLarge
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
