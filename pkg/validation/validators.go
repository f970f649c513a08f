package validation

import (
	"unicode"

	"go-jobboard-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("job_type", JobType)
	_ = v.RegisterValidation("app_status", AppStatus)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// JobType accepts the known employment types; empty is left to `required`.
func JobType(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || domain.JobType(val).Valid()
}

func AppStatus(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || domain.ApplicationStatus(val).Valid()
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// supplementary planes are mostly emoji and pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
