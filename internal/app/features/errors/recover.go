// internal/app/features/errors/recover.go
package errors

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Recoverer converts a panic in any handler into a generic 500.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func (e *ErrorLogger) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if e != nil && e.Log != nil {
				e.Log.Error("panic in handler",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"))
			}
			http.Error(w, InternalMessage, http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
