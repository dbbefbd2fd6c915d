package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct validates a struct using validation tags
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

var plateRe = regexp.MustCompile(`^[A-Z]{3}-?[0-9][A-Z0-9][0-9]{2}$`)

// IsValidPlate checks a Brazilian vehicle plate (old and Mercosul forms)
func IsValidPlate(plate string) bool {
	return plateRe.MatchString(plate)
}
