package service

import (
	"errors"
	"fmt"

	"blood-request-routing/internal/models"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports missing or malformed input. Nothing was changed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown id
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// PreconditionError is a business-rule rejection, e.g. a transition from the wrong status
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// InsufficientStockError reports a shortfall of units for a blood group
type InsufficientStockError struct {
	BloodGroup models.BloodGroup
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s stock: requested %d units, only %d available", e.BloodGroup, e.Requested, e.Available)
}

// Shortfall is how many units are missing
func (e *InsufficientStockError) Shortfall() int {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

func validationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func preconditionError(format string, args ...interface{}) error {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// transitionError turns a lifecycle table rejection into a PreconditionError
func transitionError(err error) error {
	var te *models.TransitionError
	if errors.As(err, &te) {
		return &PreconditionError{Message: te.Error()}
	}
	return err
}

// fromValidator renders the first failing field of a validator error
func fromValidator(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return validationError("%s is required", fe.Field())
	case "oneof":
		return validationError("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return validationError("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return validationError("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return validationError("%s must be a date formatted as %s", fe.Field(), fe.Param())
	default:
		return validationError("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
