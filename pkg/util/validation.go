package util

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// NewValidator. validator with english error messages.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return validate, trans
}

func TranslateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// ValidateStruct. validate s and join the translated messages into one ErrBadParamInput error.
func ValidateStruct(s interface{}) error {
	validate, trans := NewValidator()
	if err := validate.Struct(s); err != nil {
		msgs := make([]string, 0)
		for _, e := range TranslateError(err, trans) {
			msgs = append(msgs, e.Error())
		}
		return WrapErrorf(nil, ErrBadParamInput, "validation error: %s", strings.Join(msgs, "; "))
	}
	return nil
}
