package validator

import (
	"log"

	"roastmyapp_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует доменные правила валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Критическая ошибка времени запуска приложения.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// feedback_mode: free | targeted | structured
	mustRegister("feedback_mode", func(fl validator.FieldLevel) bool {
		switch models.FeedbackMode(fl.Field().String()) {
		case models.FeedbackModeFree, models.FeedbackModeTargeted, models.FeedbackModeStructured:
			return true
		}
		return false
	})

	// request_status: один из статусов RoastRequest
	mustRegister("request_status", func(fl validator.FieldLevel) bool {
		switch models.RequestStatus(fl.Field().String()) {
		case models.RequestStatusOpen, models.RequestStatusCollecting,
			models.RequestStatusInProgress, models.RequestStatusCompleted,
			models.RequestStatusCancelled:
			return true
		}
		return false
	})
}
