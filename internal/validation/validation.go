package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"garaj-backend/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Errors maps a JSON field name to a Turkish message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "doğrulama hatası: " + strings.Join(parts, ", ")
}

func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) ErrorKind() apperr.Kind { return apperr.KindInvalid }

func (e Errors) Details() any { return map[string]string(e) }

// Add records a message for field unless one is already present.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil when there is nothing to report.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// decimal.Decimal struct olduğu için sayı gibi doğrulanabilsin
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Struct validates a request DTO and returns Errors keyed by JSON field names.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := Errors{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the top-level struct name ("CreateJobRequest.parts[0].quantity").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "zorunlu alan"
	case "email":
		return "geçerli bir e-posta adresi olmalı"
	case "gte":
		return fmt.Sprintf("%s veya daha büyük olmalı", fe.Param())
	case "gt":
		return fmt.Sprintf("%s değerinden büyük olmalı", fe.Param())
	case "min":
		return fmt.Sprintf("en az %s olmalı", fe.Param())
	case "max":
		return fmt.Sprintf("en fazla %s olmalı", fe.Param())
	case "oneof":
		return fmt.Sprintf("şunlardan biri olmalı: %s", fe.Param())
	default:
		return "geçersiz değer"
	}
}
