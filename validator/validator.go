package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Validator checks values against go-playground/validator tags.
type Validator struct {
	cli *validator.Validate
}

// ValidationError describes the first rule a field broke.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (v *Validator) formatError(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: fe.Error(),
		})
	}
	return out
}

// ValidateStruct validates the struct s using its `validate` tags. Tags are
// checked left to right and only the first failing tag of a field is
// reported.
func (v *Validator) ValidateStruct(s any) []ValidationError {
	if err := v.cli.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Validate checks a single value against tag.
func (v *Validator) Validate(value any, tag string) []ValidationError {
	if err := v.cli.Var(value, tag); err != nil {
		return v.formatError(err)
	}
	return nil
}

// New returns a Validator.
func New() *Validator {
	return &Validator{
		cli: validator.New(validator.WithRequiredStructEnabled()),
	}
}
