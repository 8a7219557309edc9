package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/logger"
)

// Recovery turns a handler panic into a 500 JSON error. If the handler
// had already started streaming, the connection is left to close.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := asStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				))
				if sw.wroteHeader {
					return
				}
				body := errors.New(errors.ErrCodeInternal, "Internal server error", http.StatusInternalServerError).ToResponse()
				sw.Header().Set("Content-Type", "application/json; charset=utf-8")
				sw.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(sw).Encode(body)
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
