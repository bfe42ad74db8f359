package validator

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/optimization-report/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateRequest валидирует тело запроса и возвращает ErrInvalidRequest
// с перечнем полей, не прошедших проверку
func ValidateRequest(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidRequest
	}

	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
	}
	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"fields": fields})
}
