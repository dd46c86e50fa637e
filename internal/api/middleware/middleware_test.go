package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	t.Run("Propagates correlation id and logger", func(t *testing.T) {
		var seen *slog.Logger
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.LoggerFromContext(r.Context())
			w.WriteHeader(http.StatusAccepted)
		})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
		req.Header.Set("X-Request-ID", "req-123")

		middleware.Logging(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
		assert.NotNil(t, seen)
	})

	t.Run("Generates correlation id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/product", nil)

		middleware.Logging(http.NotFoundHandler()).ServeHTTP(rr, req)

		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})
}

func TestLoggerFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, slog.Default(), middleware.LoggerFromContext(req.Context()))
}

func TestRecover(t *testing.T) {
	t.Run("Panic becomes 500", func(t *testing.T) {
		panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("unexpected nil product")
		})

		rr := httptest.NewRecorder()
		middleware.Recover(panicking).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/product", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"message":"An unknown error occurred!"}`, rr.Body.String())
	})

	t.Run("Normal response untouched", func(t *testing.T) {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		rr := httptest.NewRecorder()
		middleware.Recover(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, bytes.Equal([]byte("ok"), rr.Body.Bytes()))
	})
}
