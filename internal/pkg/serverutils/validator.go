package serverutils

import (
	"fmt"

	"docuchat-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a domain validation error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return apperror.Validation(
				fmt.Sprintf("field '%s' failed on '%s'", first.Field(), first.Tag()),
			)
		}
		return apperror.Validation(err.Error())
	}
	return nil
}
