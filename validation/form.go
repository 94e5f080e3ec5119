package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mbolis/quick-form/model"
)

var formValidate = validator.New()

// ValidateForm checks an owner-supplied form definition before it is stored.
func ValidateForm(form model.Form) error {
	if err := formValidate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid form: %s failed on %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid form: %w", err)
	}

	keys := make(map[string]bool, len(form.Questions))
	for _, q := range form.Questions {
		if keys[q.QuestionKey] {
			return fmt.Errorf("invalid form: duplicate question key %q", q.QuestionKey)
		}
		keys[q.QuestionKey] = true

		if q.Type.IsSelect() && len(q.Options) == 0 {
			return fmt.Errorf("invalid form: select question %q has no options", q.QuestionKey)
		}
	}

	for _, q := range form.Questions {
		if q.ConditionalRule == nil {
			continue
		}
		if len(q.ConditionalRule.Conditions) > 0 {
			if _, err := model.ParseLogic(string(q.ConditionalRule.Logic)); err != nil {
				return fmt.Errorf("invalid form: question %q: %w", q.QuestionKey, err)
			}
		}
		for _, c := range q.ConditionalRule.Conditions {
			if c.QuestionKey == q.QuestionKey {
				return fmt.Errorf("invalid form: question %q depends on itself", q.QuestionKey)
			}
			if !keys[c.QuestionKey] {
				return fmt.Errorf("invalid form: question %q depends on unknown question %q", q.QuestionKey, c.QuestionKey)
			}
			if _, err := model.ParseOperator(string(c.Operator)); err != nil {
				return fmt.Errorf("invalid form: question %q: %w", q.QuestionKey, err)
			}
		}
	}

	return nil
}
