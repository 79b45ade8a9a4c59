package validator

import (
	"fmt"

	"rencontre_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// enumRule - строковый тег, значение которого должно входить в перечисление модели.
// Пустое значение пропускается: для него есть 'required'.
type enumRule struct {
	valid   func(string) bool
	message string
}

var enumRules = map[string]enumRule{
	"is-gender": {
		valid:   func(s string) bool { return models.Gender(s).Valid() },
		message: "Must be one of: M, F",
	},
	"is-relationship-goal": {
		valid:   func(s string) bool { return models.RelationshipGoal(s).Valid() },
		message: "Must be one of: serious, marriage, friendship, dating",
	},
	"is-post-status": {
		valid:   func(s string) bool { return models.PostStatus(s).Valid() },
		message: "Must be one of: draft, published, archived",
	},
	"is-transaction-type": {
		valid:   func(s string) bool { return models.TransactionType(s).Valid() },
		message: "Must be one of: premium_subscription, one_time_download",
	},
}

func registerCustomRules(v *validator.Validate) error {
	for tag, rule := range enumRules {
		valid := rule.valid
		fn := func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || valid(value)
		}
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
