package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	requiredTag  = "required"
	requiredText = "{0} is required"
	phoneTag     = "phone"
	phoneText    = "{0} must contain only digits, spaces, dashes and a leading +"
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	validate = validator.New()
	InitValidators(validate, translator)
}

// InitValidators registers translations and custom rules on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return name
	})

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate checks a bound form struct and converts failures into a ValidationError.
func Validate(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return errors.Wrap(err, "validating form")
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
	}
	return NewValidationError(nil, flds...)
}

// CleanString trims the value and optionally lower-cases it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}

func phoneValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ' ', r == '-':
		case r == '+' && i == 0:
		default:
			return false
		}
	}
	return true
}
