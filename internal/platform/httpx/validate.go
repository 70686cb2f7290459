package httpx

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns the validator instance handlers share.
func NewValidator() *validator.Validate {
	return validator.New()
}

// ValidationError converts validator output into a 400-mapped domain error
// naming the offending fields.
func ValidationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: cuerpo de la solicitud inválido", ErrValidation)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: campos requeridos faltantes o inválidos: %s", ErrValidation, strings.Join(fields, ", "))
}
