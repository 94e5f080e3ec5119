package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbolis/quick-form/model"
)

func TestValidateForm(t *testing.T) {
	base := func() model.Form {
		f := selectForm()
		f.Questions = append(f.Questions, model.Question{
			QuestionKey:     "q2",
			ExternalFieldID: "fldQ2",
			Label:           "Details",
			Type:            model.SingleLineText,
			ConditionalRule: &model.ConditionalRule{
				Logic:      model.LogicAll,
				Conditions: []model.Condition{{QuestionKey: "q1", Operator: model.OpEquals, Value: "a"}},
			},
		})
		return f
	}

	assert.NoError(t, ValidateForm(base()))

	tests := map[string]func(f *model.Form){
		"missing title":        func(f *model.Form) { f.Title = "" },
		"missing table":        func(f *model.Form) { f.ExternalTableID = "" },
		"missing field id":     func(f *model.Form) { f.Questions[0].ExternalFieldID = "" },
		"duplicate key":        func(f *model.Form) { f.Questions[1].QuestionKey = "q1" },
		"select no options":    func(f *model.Form) { f.Questions[0].Options = nil },
		"unknown dependency":   func(f *model.Form) { f.Questions[1].ConditionalRule.Conditions[0].QuestionKey = "nope" },
		"self dependency":      func(f *model.Form) { f.Questions[1].ConditionalRule.Conditions[0].QuestionKey = "q2" },
		"unsupported logic":    func(f *model.Form) { f.Questions[1].ConditionalRule.Logic = "XOR" },
		"unsupported operator": func(f *model.Form) { f.Questions[1].ConditionalRule.Conditions[0].Operator = "gt" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := base()
			mutate(&f)
			assert.Error(t, ValidateForm(f))
		})
	}
}
