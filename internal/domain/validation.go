// media-service/internal/domain/validation.go
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation описывает одно нарушение: имя поля и причину.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError содержит все нарушения, найденные во входных данных.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError собирает ValidationError из готовых нарушений.
func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Merge добавляет нарушения из other для полей, которых еще нет в e.
// Сообщение из e для поля имеет приоритет.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	seen := make(map[string]bool, len(e.Violations))
	merged := make([]Violation, 0, len(e.Violations)+len(other.Violations))
	for _, v := range e.Violations {
		seen[v.Field] = true
		merged = append(merged, v)
	}
	for _, v := range other.Violations {
		if !seen[v.Field] {
			seen[v.Field] = true
			merged = append(merged, v)
		}
	}
	return NewValidationError(merged...)
}

// NewValidator создает validator, который сообщает имена полей из json-тегов.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateMediaRequest проверяет запрос и возвращает *ValidationError со списком всех нарушений.
// Значения полей не изменяются.
func ValidateMediaRequest(ctx context.Context, v *validator.Validate, req MediaRequest) error {
	err := v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate media request: %w", err)
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return NewValidationError(violations...)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// DecodeViolation превращает ошибку несовпадения типа из encoding/json в нарушение для поля.
// Для прочих ошибок декодирования возвращает false.
func DecodeViolation(err error) (*ValidationError, bool) {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil, false
	}
	return NewValidationError(Violation{
		Field:   typeErr.Field,
		Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()),
	}), true
}
