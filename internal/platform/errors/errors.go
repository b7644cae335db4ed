// Package errors define el error estructurado del servicio.
// Importar siempre como perr para no chocar con el paquete errors de stdlib.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind clasifica el error. Los valores son estables (se exponen en la API como Code()).
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindUnauthorized
	// KindDependency: falla de un worker externo. Nunca debería llegar al cliente.
	KindDependency
	// KindStore: store caído o transacción abortada. Se expone como error opaco.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindUnauthorized:
		return "unauthorized"
	case KindDependency:
		return "dependency_failure"
	case KindStore:
		return "store_failure"
	default:
		return "internal_error"
	}
}

// HTTPStatusCode mapea un Kind a status HTTP.
func HTTPStatusCode(k Kind) int {
	switch k {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describe un campo inválido (para ValidationError).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error es el error del dominio: kind para máquinas, msg para humanos.
type Error struct {
	kind   Kind
	msg    string
	fields []FieldError
	orig   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.msg
	if len(e.fields) > 0 {
		parts := make([]string, 0, len(e.fields))
		for _, f := range e.fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg = msg + " (" + strings.Join(parts, "; ") + ")"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", msg, e.orig)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.orig }

func (e *Error) Kind() Kind { return e.kind }

// Message devuelve el mensaje sin la causa envuelta (seguro para el cliente).
func (e *Error) Message() string { return e.msg }

func (e *Error) Fields() []FieldError { return e.fields }

// Is permite errors.Is(err, perr.ErrNotFound) comparando por kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.msg == e.msg
}

// Sentinels de conveniencia.
var (
	ErrNotFound  = New(KindNotFound, "not found")
	ErrForbidden = New(KindForbidden, "forbidden")
)

func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

func Wrap(orig error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, orig: orig}
}

// Validation arma un ValidationError con la lista de campos inválidos.
func Validation(fields ...FieldError) error {
	return &Error{kind: KindValidation, msg: "invalid input", fields: fields}
}

// InvalidField es azúcar para un único campo.
func InvalidField(field, message string) error {
	return Validation(FieldError{Field: field, Message: message})
}

// Store envuelve un error de infraestructura sin filtrar el detalle al cliente.
func Store(orig error, op string) error {
	if orig == nil {
		return nil
	}
	if e, ok := As(orig); ok && e.kind != KindUnknown {
		return orig
	}
	return &Error{kind: KindStore, msg: op, orig: orig}
}

func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf devuelve el Kind de cualquier error (Unknown si no es nuestro).
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

func HTTPStatus(err error) int { return HTTPStatusCode(KindOf(err)) }

// Wire es la forma JSON del error que devuelve la API.
type Wire struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// WireFrom convierte cualquier error en payload. Store/Dependency/Unknown se vuelven opacos.
func WireFrom(err error) Wire {
	e, ok := As(err)
	if !ok {
		return Wire{Code: KindUnknown.String(), Message: "internal error"}
	}
	switch e.kind {
	case KindStore, KindDependency, KindUnknown:
		return Wire{Code: e.kind.String(), Message: "internal error"}
	}
	return Wire{Code: e.kind.String(), Message: e.msg, Details: e.fields}
}
