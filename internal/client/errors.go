package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err means the token is missing, invalid
// or revoked.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

func decodeStatusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
}

// statusTransport turns non-2xx responses into errors before the GraphQL
// client sees them; it would otherwise decode an error body as empty data.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, decodeStatusError(resp)
	}
	return resp, nil
}

func transportOrDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}

// normalize strips the library prefix from GraphQL error messages.
func normalize(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	msg := strings.TrimPrefix(err.Error(), "graphql: ")
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}
