package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/model"
)

func selectForm() model.Form {
	return model.Form{
		Title:           "Survey",
		ExternalBaseID:  "appBase",
		ExternalTableID: "tblTable",
		Active:          true,
		Questions: []model.Question{{
			QuestionKey:     "q1",
			ExternalFieldID: "fldQ1",
			Label:           "Pick one",
			Type:            model.SingleSelect,
			Required:        true,
			Options:         []string{"a", "b"},
		}},
	}
}

func TestValidateSingleSelect(t *testing.T) {
	form := selectForm()

	assert.NoError(t, Validate(form, model.AnswerSet{"q1": "a"}))

	err := Validate(form, model.AnswerSet{})
	var missing *RequiredFieldMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "q1", missing.QuestionKey)

	err = Validate(form, model.AnswerSet{"q1": "c"})
	var invalid *InvalidOptionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "q1", invalid.QuestionKey)
	assert.Equal(t, "c", invalid.Value)
	assert.Contains(t, err.Error(), "q1")
}

func TestValidateInactiveForm(t *testing.T) {
	form := selectForm()
	form.Active = false

	assert.ErrorIs(t, Validate(form, model.AnswerSet{"q1": "a"}), ErrFormInactive)
}

func TestHiddenRequiredQuestionIsSkipped(t *testing.T) {
	form := model.Form{
		Active: true,
		Questions: []model.Question{
			{QuestionKey: "q1", Label: "Continue?", Type: model.SingleSelect, Options: []string{"yes", "no"}},
			{
				QuestionKey: "q2",
				Label:       "Why?",
				Type:        model.MultilineText,
				Required:    true,
				ConditionalRule: &model.ConditionalRule{
					Logic:      model.LogicAll,
					Conditions: []model.Condition{{QuestionKey: "q1", Operator: model.OpEquals, Value: "yes"}},
				},
			},
		},
	}

	assert.NoError(t, Validate(form, model.AnswerSet{"q1": "no"}))
	assert.NoError(t, Validate(form, model.AnswerSet{"q1": "no", "q2": ""}))

	var missing *RequiredFieldMissingError
	assert.ErrorAs(t, Validate(form, model.AnswerSet{"q1": "yes"}), &missing)
	assert.Equal(t, "q2", missing.QuestionKey)
}

func TestHiddenSelectIsNotOptionChecked(t *testing.T) {
	form := model.Form{
		Active: true,
		Questions: []model.Question{
			{QuestionKey: "gate", Type: model.SingleLineText},
			{
				QuestionKey: "pick",
				Type:        model.SingleSelect,
				Options:     []string{"a"},
				ConditionalRule: &model.ConditionalRule{
					Logic:      model.LogicAny,
					Conditions: []model.Condition{{QuestionKey: "gate", Operator: model.OpEquals, Value: "open"}},
				},
			},
		},
	}

	assert.NoError(t, Validate(form, model.AnswerSet{"gate": "closed", "pick": "zzz"}))
	assert.Error(t, Validate(form, model.AnswerSet{"gate": "open", "pick": "zzz"}))
}

func TestMultipleSelectListsEveryInvalidValue(t *testing.T) {
	form := model.Form{
		Active: true,
		Questions: []model.Question{{
			QuestionKey: "colors",
			Label:       "Colors",
			Type:        model.MultipleSelect,
			Options:     []string{"red", "green", "blue"},
		}},
	}

	assert.NoError(t, Validate(form, model.AnswerSet{"colors": []any{"red", "blue"}}))
	assert.NoError(t, Validate(form, model.AnswerSet{"colors": []any{}}))

	err := Validate(form, model.AnswerSet{"colors": []any{"red", "pink", "black"}})
	var invalid *InvalidOptionsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []any{"pink", "black"}, invalid.Values)
	assert.Equal(t, "invalid options for Colors (colors): pink, black", err.Error())

	err = Validate(form, model.AnswerSet{"colors": "red"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []any{"red"}, invalid.Values)
}

func TestValidateIsFailFastInDeclaredOrder(t *testing.T) {
	form := model.Form{
		Active: true,
		Questions: []model.Question{
			{QuestionKey: "first", Type: model.SingleLineText, Required: true},
			{QuestionKey: "second", Type: model.SingleLineText, Required: true},
		},
	}

	var missing *RequiredFieldMissingError
	require.ErrorAs(t, Validate(form, model.AnswerSet{}), &missing)
	assert.Equal(t, "first", missing.QuestionKey)
}

func TestUnknownAnswerKeysAreIgnored(t *testing.T) {
	form := selectForm()

	assert.NoError(t, Validate(form, model.AnswerSet{"q1": "b", "stale": "value"}))
}

func TestUnsupportedRuleIsSurfaced(t *testing.T) {
	form := model.Form{
		Active: true,
		Questions: []model.Question{{
			QuestionKey: "q",
			Type:        model.SingleLineText,
			ConditionalRule: &model.ConditionalRule{
				Logic:      model.Logic("SOME"),
				Conditions: []model.Condition{{QuestionKey: "x", Operator: model.OpEquals, Value: 1}},
			},
		}},
	}

	var unsupported *UnsupportedRuleError
	assert.ErrorAs(t, Validate(form, model.AnswerSet{"x": 1}), &unsupported)
}

func TestValidateDoesNotMutateAnswers(t *testing.T) {
	answers := model.AnswerSet{"q1": "a", "extra": []any{"x"}}

	require.NoError(t, Validate(selectForm(), answers))
	assert.Equal(t, model.AnswerSet{"q1": "a", "extra": []any{"x"}}, answers)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty([]any{}))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty([]any{"x"}))
}
