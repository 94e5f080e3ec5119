// Package validation checks submitted answers against a form definition.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/rules"
)

var ErrFormInactive = errors.New("this form is no longer accepting responses")

type RequiredFieldMissingError struct {
	QuestionKey string
	Label       string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("%s is required", describe(e.QuestionKey, e.Label))
}

type InvalidOptionError struct {
	QuestionKey string
	Label       string
	Value       any
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option for %s: %v", describe(e.QuestionKey, e.Label), e.Value)
}

type InvalidOptionsError struct {
	QuestionKey string
	Label       string
	Values      []any
}

func (e *InvalidOptionsError) Error() string {
	vals := make([]string, len(e.Values))
	for i, v := range e.Values {
		vals[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("invalid options for %s: %s", describe(e.QuestionKey, e.Label), strings.Join(vals, ", "))
}

// UnsupportedRuleError reports a conditional rule that cannot be evaluated.
type UnsupportedRuleError struct {
	QuestionKey string
	Err         error
}

func (e *UnsupportedRuleError) Error() string {
	return fmt.Sprintf("rule of question %q: %s", e.QuestionKey, e.Err)
}

func (e *UnsupportedRuleError) Unwrap() error {
	return e.Err
}

func describe(key, label string) string {
	if label == "" {
		return fmt.Sprintf("question %q", key)
	}
	return fmt.Sprintf("%s (%s)", label, key)
}

// Validate checks answers against the form. It stops at the first failing
// question, in declared order. Hidden questions are neither required nor
// option-checked, and answers to unknown question keys are ignored.
func Validate(form model.Form, answers model.AnswerSet) error {
	if !form.Active {
		return ErrFormInactive
	}

	for _, q := range form.Questions {
		visible, err := rules.Evaluate(q.ConditionalRule, answers)
		if err != nil {
			return &UnsupportedRuleError{q.QuestionKey, err}
		}
		if !visible {
			continue
		}

		answer, present := answers[q.QuestionKey]
		if !present || IsEmpty(answer) {
			if q.Required {
				return &RequiredFieldMissingError{q.QuestionKey, q.Label}
			}
			continue
		}

		switch q.Type {
		case model.SingleSelect:
			if !isOption(q.Options, answer) {
				return &InvalidOptionError{q.QuestionKey, q.Label, answer}
			}

		case model.MultipleSelect:
			var invalid []any
			if rules.IsSequence(answer) {
				for _, v := range rules.Elements(answer) {
					if !isOption(q.Options, v) {
						invalid = append(invalid, v)
					}
				}
			} else {
				invalid = []any{answer}
			}
			if len(invalid) > 0 {
				return &InvalidOptionsError{q.QuestionKey, q.Label, invalid}
			}
		}
	}

	return nil
}

// IsEmpty reports whether an answer counts as not given.
func IsEmpty(answer any) bool {
	switch v := answer.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return rules.IsSequence(answer) && len(rules.Elements(answer)) == 0
}

func isOption(options []string, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
