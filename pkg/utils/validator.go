package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sefazor/conference-backend/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Report json field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("image_base64", validateImageBase64)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Validate runs struct validation and returns every failure as field errors.
func (v *Validator) Validate(s interface{}) []models.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "base", Message: err.Error()}}
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "image_base64":
		return "must be a base64 encoded image"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateImageBase64 accepts raw base64 or a data URI with a base64 payload.
func validateImageBase64(fl validator.FieldLevel) bool {
	_, err := DecodeImageBase64(fl.Field().String())
	return err == nil
}

// DecodeImageBase64 strips an optional data URI prefix and decodes the payload.
func DecodeImageBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, errors.New("empty image")
	}
	return base64.StdEncoding.DecodeString(s)
}
