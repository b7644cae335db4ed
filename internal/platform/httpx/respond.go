// Package httpx junta los helpers de request/response que comparten los handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/logger"
	"findmypet-search/internal/platform/validate"
)

const maxBodyBytes = 1 << 20

type errorEnvelope struct {
	Error perr.Wire `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError serializa err como envelope. Los 5xx se loguean con la causa real.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := perr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.From(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	WriteJSON(w, status, errorEnvelope{Error: perr.WireFrom(err)})
}

type decodeOptions struct {
	allowUnknown bool
}

type DecodeOption func(*decodeOptions)

// AllowUnknownFields ignora campos que T no declara (PATCH descarta owner_user_id, created_at, etc).
func AllowUnknownFields() DecodeOption {
	return func(o *decodeOptions) { o.allowUnknown = true }
}

// DecodeJSON lee un único objeto json (por default campos desconocidos = error) y lo valida.
func DecodeJSON[T any](r *http.Request, opts ...DecodeOption) (T, error) {
	var o decodeOptions
	for _, fn := range opts {
		fn(&o)
	}

	var dst T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if !o.allowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dst, perr.InvalidField("body", "empty body")
		}
		return dst, perr.InvalidField("body", "invalid json: "+err.Error())
	}
	if dec.More() {
		return dst, perr.InvalidField("body", "unexpected trailing data")
	}
	if err := validate.Struct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Page lee limit/offset del query string con default y tope.
func Page(r *http.Request, defLimit, maxLimit int) (limit, offset int, err error) {
	q := r.URL.Query()
	limit, offset = defLimit, 0

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			return 0, 0, perr.InvalidField("limit", "must be a positive integer")
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return 0, 0, perr.InvalidField("offset", "must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}
