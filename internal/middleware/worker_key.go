package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/httpx"
)

const WorkerKeyHeader = "X-Worker-Key"

// RequireWorkerKey protege la ingesta de workers. Con key vacía no exige nada (modo dev).
func RequireWorkerKey(key string) func(http.Handler) http.Handler {
	key = strings.TrimSpace(key)
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimSpace(r.Header.Get(WorkerKeyHeader))
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "invalid worker key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
