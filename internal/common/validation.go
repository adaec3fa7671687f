package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// ValidationErrors collects every failing field of one struct.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Field+": "+e.Message)
	}
	return strings.Join(messages, "; ")
}

func (errs ValidationErrors) Unwrap() error { return ErrValidation }

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

// Validator returns the process-wide validator, initialising it on first use.
// Field names in messages follow json tags; "nonblank" rejects whitespace-only strings.
func Validator() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				tag = fld.Tag.Get("form")
			}
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterTranslation("nonblank", trans,
			func(ut ut.Translator) error {
				return ut.Add("nonblank", "{0} must not be blank", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("nonblank", fe.Field())
				return msg
			},
		)

		vInst, vTrans = v, trans
	})
	return vInst, vTrans
}

// ValidateStruct applies struct tags to s and returns ValidationErrors on failure.
func ValidateStruct(s any) error {
	v, trans := Validator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return fmt.Errorf("validator: %w", inv)
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   trimRoot(fe.Namespace()),
			Value:   fe.Value(),
			Message: fe.Translate(trans),
		})
	}
	return out
}

// trimRoot drops the struct type name from a validator namespace ("ScoredReport.bullets[0].score").
func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
