package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a request.
func Validate(req any) error {
	return validate.Struct(req)
}

// ValidationDetails maps each failing field to the tag it failed. It returns
// nil for errors that are not validation errors.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details[fe.Field()] = fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
			continue
		}
		details[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return details
}
