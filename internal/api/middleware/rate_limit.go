package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/utils/response"
)

type RateLimiter interface {
	Allow(ctx context.Context, client string) (bool, int, error)
}

// RateLimit refuses requests from a client that has used up its window with
// 429 and a Retry-After header. If the limiter itself fails the request is
// let through.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			logger := LoggerFromContext(r.Context())
			client := clientAddr(r)

			allowed, retryAfter, err := limiter.Allow(r.Context(), client)
			if err != nil {
				logger.Warn("Rate limiter unavailable, allowing request", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				response.Error(w, errors.TooManyRequestsError("Too many uploads, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
