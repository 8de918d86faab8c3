// Package bind provides JSON bind and validation helpers for handlers
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// Normalizer is implemented by payloads that clean their own fields before validation
type Normalizer interface{ Normalize() }

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce    sync.Once
	vSvc     *ValidatorSvc
	jsonMore = func(dec *json.Decoder) bool { return dec.More() } // seam
)

// emailTLD accepts local@domain.tld where the last label is alphabetic (or punycode)
var emailTLD = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)*\.([A-Za-z]{2,}|xn--[A-Za-z0-9-]+)$`)

// Init initializes the singleton validator with english translations and json tag names
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
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

		registerShortMax(v, trans)
		registerEmailTLD(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

// RegisterValidation registers a custom tag
func RegisterValidation(tag string, fn validator.Func) error {
	return Get().Validator.RegisterValidation(tag, fn)
}

// JSONOptions controls parsing behavior
type JSONOptions struct {
	MaxBytes        int64 // default 1MB; a larger body is a PayloadTooLarge error
	DisallowUnknown bool
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{MaxBytes: 1 << 20}
}

// ParseJSON reads the body (bounded by MaxBytes), decodes it into T, and validates it
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	var reader io.Reader = r.Body
	if o.MaxBytes > 0 {
		// one extra byte tells "exactly at the limit" from "over it"
		reader = io.LimitReader(r.Body, o.MaxBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return zero, perr.Wrap(err, perr.ErrorCodeJSON, "could not read request body")
	}
	if o.MaxBytes > 0 && int64(len(raw)) > o.MaxBytes {
		return zero, perr.New(perr.ErrorCodePayloadTooLarge, "request body too large")
	}
	return DecodeJSON[T](raw, o)
}

// DecodeJSON decodes raw into T, runs Normalize when T supports it, and validates.
// Syntax problems are ErrorCodeJSON; well-formed JSON of the wrong shape is ErrorCodeValidation.
func DecodeJSON[T any](raw []byte, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			e := perr.Wrapf(err, perr.ErrorCodeValidation, "%s has the wrong type", fieldOrBody(typeErr.Field))
			return zero, perr.WithField(e, typeErr.Field)
		}
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return zero, perr.Wrap(err, perr.ErrorCodeValidation, "unexpected field")
		}
		return zero, perr.Wrap(err, perr.ErrorCodeJSON, "invalid JSON")
	}
	if jsonMore(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if n, ok := any(&dst).(Normalizer); ok {
		n.Normalize()
	}

	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Validate runs struct validation and maps the first failure to a project error
func Validate(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeValidation, "validation error")
	}
	field, msg := ValidationFieldAndMessage(err)
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

func fieldOrBody(f string) string {
	if f == "" {
		return "body"
	}
	return f
}

// ValidationFieldAndMessage returns the first field and translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return "", inv.Error()
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// custom translations with short messages

func registerShortMax(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("max", trans,
		func(ut ut.Translator) error {
			if err := ut.Add("max", "{0} must be at most {1}", true); err != nil {
				return err
			}
			return ut.Add("max-chars", "{0} must be at most {1} characters", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			key := "max"
			if fe.Kind() == reflect.String {
				key = "max-chars"
			}
			msg, _ := ut.T(key, fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerEmailTLD(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("email_tld", func(fl validator.FieldLevel) bool {
		return emailTLD.MatchString(fl.Field().String())
	})
	_ = v.RegisterTranslation("email_tld", trans,
		func(ut ut.Translator) error {
			return ut.Add("email_tld", "{0} must be a valid email address", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("email_tld", fe.Field())
			return msg
		},
	)
}
