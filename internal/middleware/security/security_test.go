package security

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo reads the whole body and reports a read failure as 413.
func echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func TestMaxBodySizeMiddleware_AllowsSmallBody(t *testing.T) {
	handler := MaxBodySizeMiddleware(1)(echo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte("small body")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "small body", rr.Body.String())
}

func TestMaxBodySizeMiddleware_RejectsDeclaredLength(t *testing.T) {
	called := false
	handler := MaxBodySizeMiddleware(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate/batch", strings.NewReader(strings.Repeat("x", 2048)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	errObj, ok := response["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BODY_TOO_LARGE", errObj["code"])
}

func TestMaxBodySizeMiddleware_RejectsStreamedBody(t *testing.T) {
	handler := MaxBodySizeMiddleware(1)(echo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate/batch", strings.NewReader(strings.Repeat("x", 2048)))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestMaxBodySizeMiddleware_ExactLimit(t *testing.T) {
	handler := MaxBodySizeMiddleware(1)(echo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader(strings.Repeat("x", 1024)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMaxBodySizeMiddleware_NoBodyOrNoLimit(t *testing.T) {
	rr := httptest.NewRecorder()
	MaxBodySizeMiddleware(1)(echo()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/methods", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader(strings.Repeat("x", 4096)))
	MaxBodySizeMiddleware(0)(echo()).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
