// Package validate envuelve go-playground/validator con nombres json y mensajes en inglés.
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "findmypet-search/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	once sync.Once
	std  *Validator
)

// Get devuelve el validator compartido (se arma una sola vez).
func Get() *Validator {
	once.Do(func() {
		std = New()
	})
	return std
}

func New() *Validator {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	// nombres de campo = tag json
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})

	_ = en_translations.RegisterDefaultTranslations(v, trans)
	registerShort(v, trans, "min", "{0} must be at least {1}")
	registerShort(v, trans, "max", "{0} must be at most {1}")

	return &Validator{v: v, trans: trans}
}

// Struct valida s y traduce los fallos a un perr.Validation con un detalle por campo.
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return perr.Wrap(err, perr.KindUnknown, "validator internal error")
	}
	fields := make([]perr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, perr.FieldError{
			Field:   fieldPath(fe),
			Message: fe.Translate(x.trans),
		})
	}
	return perr.Validation(fields...)
}

// Struct usa el validator compartido.
func Struct(s any) error { return Get().Struct(s) }

// fieldPath quita el nombre del struct raíz: "createSearchRequest.last_seen.location" -> "last_seen.location".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
