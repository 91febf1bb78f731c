package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared instance with the domain validators registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		RegisterValidators(validate)
	})
	return validate
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("hire_signal", ValidHireSignal)
	_ = v.RegisterValidation("interview_type", ValidInterviewType)
	_ = v.RegisterValidation("axis_scores", ValidAxisScores)
	_ = v.RegisterValidation("axis_notes", ValidAxisNotes)
}

// Struct validates s and converts field errors into an invalid-input error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewInvalidInput("validation failed", err)
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return apperror.NewInvalidInput(strings.Join(parts, ", "), err)
}

func ValidHireSignal(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return models.HireSignal(val).Valid()
}

func ValidInterviewType(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return models.InterviewType(val).Valid()
}

// ValidAxisScores accepts a map keyed by axis whose values lie in 1..5.
func ValidAxisScores(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	iter := field.MapRange()
	for iter.Next() {
		if !models.Axis(iter.Key().String()).Valid() {
			return false
		}
		score := iter.Value().Int()
		if score < models.MinScore || score > models.MaxScore {
			return false
		}
	}
	return true
}

// ValidAxisNotes accepts a map keyed by axis.
func ValidAxisNotes(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	for _, key := range field.MapKeys() {
		if !models.Axis(key.String()).Valid() {
			return false
		}
	}
	return true
}
