package middleware

import (
	"net/http"
	"runtime/debug"

	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/httpx"
	"findmypet-search/internal/platform/logger"
)

// Recover reemplaza chimw.Recoverer: loguea el stack y responde el envelope de error.
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
			logger.From(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			httpx.WriteError(w, r, perr.New(perr.KindUnknown, "internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
