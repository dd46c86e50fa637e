package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/utils/response"
)

// Recover turns a panicking handler into a 500 response carrying the
// generic error message.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			LoggerFromContext(r.Context()).Error("Recovered from panic",
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)

			response.Error(w, errors.InternalError(errors.UnknownErrorMessage))
		}()

		next.ServeHTTP(w, r)
	})
}
