// Package validation adapts go-playground/validator to echo's Validator
// interface, so handlers can run the struct tags on bound DTOs with
// ctx.Validate.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	return &StructValidator{validate: validator.New()}
}

func (sv *StructValidator) Validate(i any) error {
	return sv.validate.Struct(i)
}
