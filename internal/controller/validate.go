package controller

import (
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/pkg/utils"
)

// validate runs struct tag validation and reports failures the same way the
// services report rule violations.
func validate(v *utils.Validator, req interface{}) error {
	if errs := v.Validate(req); len(errs) > 0 {
		return &service.ValidationError{Errors: errs}
	}
	return nil
}
