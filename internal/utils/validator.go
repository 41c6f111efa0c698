package utils

import (
	"reflect"
	"strings"

	apperrors "github.com/WPCM-2025/consultation-service/internal/errors"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the custom domain rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// ValidateStruct validates tagged request structs, returning nil or the
// collected field errors.
func (v *Validator) ValidateStruct(s interface{}) apperrors.ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// Custom validation functions

func ValidateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

func ValidateSchoolLevel(fl validator.FieldLevel) bool {
	switch models.SchoolLevel(fl.Field().String()) {
	case models.LevelRemedial, models.LevelFirstYear, models.LevelSecondYear,
		models.LevelThirdYear, models.LevelFourthYear, models.LevelFifthYear,
		models.LevelSixthYear, models.LevelSeventhYear:
		return true
	}
	return false
}

func ValidateConsultationStatus(fl validator.FieldLevel) bool {
	return models.ConsultationStatus(fl.Field().String()).Valid()
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", ValidateUserRole)
	validate.RegisterValidation("school_level", ValidateSchoolLevel)
	validate.RegisterValidation("consultation_status", ValidateConsultationStatus)

	// Report field names from json tags for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
