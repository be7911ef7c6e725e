package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Request describes one call against an http.Handler.
type Request struct {
	Method        string
	Path          string
	Body          any
	RawBody       []byte
	Authorization string
}

// Do serves the request and returns the recorder. Body is JSON-encoded;
// RawBody is sent as-is and wins when both are set.
func Do(t *testing.T, h http.Handler, r Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch {
	case r.RawBody != nil:
		body = bytes.NewReader(r.RawBody)
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		require.NoError(t, err, "Failed to marshal request body")
		body = bytes.NewReader(data)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, r.Path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Authorization != "" {
		req.Header.Set("Authorization", r.Authorization)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Envelope is the API response with typed data.
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// DecodeEnvelope parses an API response, failing the test on invalid JSON.
func DecodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Failed to parse response: %s", rec.Body.String())
	return env
}

// AssertErrorCode asserts the status and the envelope error code.
func AssertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := DecodeEnvelope[json.RawMessage](t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code)
}
