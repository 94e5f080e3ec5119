// Package rules decides whether a question is in play for a set of answers.
//
// It is the only implementation of conditional visibility: submission
// validation and the public visibility endpoint used by the form renderer
// both call into it.
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mbolis/quick-form/model"
)

var (
	ErrUnsupportedLogic    = errors.New("unsupported rule logic")
	ErrUnsupportedOperator = errors.New("unsupported condition operator")
)

// IsVisible reports whether a question guarded by rule is shown given the
// answers collected so far. Rules that cannot be evaluated hide the question.
func IsVisible(rule *model.ConditionalRule, answers model.AnswerSet) bool {
	visible, err := Evaluate(rule, answers)
	return err == nil && visible
}

// Evaluate is IsVisible with unsupported logic or operators reported
// instead of hidden.
func Evaluate(rule *model.ConditionalRule, answers model.AnswerSet) (bool, error) {
	if rule == nil || len(rule.Conditions) == 0 {
		return true, nil
	}

	results := make([]bool, len(rule.Conditions))
	for i, c := range rule.Conditions {
		ok, err := evalCondition(c, answers)
		if err != nil {
			return false, err
		}
		results[i] = ok
	}

	switch rule.Logic {
	case model.LogicAll:
		for _, ok := range results {
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case model.LogicAny:
		for _, ok := range results {
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", ErrUnsupportedLogic, rule.Logic)
	}
}

func evalCondition(c model.Condition, answers model.AnswerSet) (bool, error) {
	answer, ok := answers[c.QuestionKey]
	if !ok || answer == nil {
		// an unanswered prerequisite never satisfies a condition
		switch c.Operator {
		case model.OpEquals, model.OpNotEquals, model.OpContains:
			return false, nil
		}
		return false, fmt.Errorf("%w %q", ErrUnsupportedOperator, c.Operator)
	}

	switch c.Operator {
	case model.OpEquals:
		return Equal(answer, c.Value), nil
	case model.OpNotEquals:
		return !Equal(answer, c.Value), nil
	case model.OpContains:
		return contains(answer, c.Value), nil
	}
	return false, fmt.Errorf("%w %q", ErrUnsupportedOperator, c.Operator)
}

// Equal compares two answer values by value. Numbers compare numerically
// regardless of their Go type, also inside sequences and objects, which
// compare deeply.
func Equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func contains(answer, value any) bool {
	if text, ok := answer.(string); ok {
		switch value.(type) {
		case string, bool, float64, int, int64:
			return strings.Contains(text, fmt.Sprint(value))
		}
		return false
	}
	for _, el := range Elements(answer) {
		if Equal(el, value) {
			return true
		}
	}
	return false
}

// Elements returns the elements of a sequence answer, or nil when the
// answer is not a sequence.
func Elements(answer any) []any {
	switch v := answer.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return nil
}

// IsSequence reports whether answer is a list value.
func IsSequence(answer any) bool {
	switch answer.(type) {
	case []any, []string:
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func normalize(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	switch x := v.(type) {
	case []any, []string:
		els := Elements(x)
		out := make([]any, len(els))
		for i, el := range els {
			out[i] = normalize(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[k] = normalize(el)
		}
		return out
	}
	return v
}
