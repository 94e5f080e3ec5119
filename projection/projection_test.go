package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbolis/quick-form/model"
)

var form = model.Form{
	Questions: []model.Question{
		{QuestionKey: "name", ExternalFieldID: "fldName", Label: "Name", Required: true},
		{QuestionKey: "tags", ExternalFieldID: "fldTags", Label: "Tags"},
		{
			QuestionKey:     "why",
			ExternalFieldID: "fldWhy",
			Label:           "Why",
			ConditionalRule: &model.ConditionalRule{
				Logic:      model.LogicAll,
				Conditions: []model.Condition{{QuestionKey: "name", Operator: model.OpEquals, Value: "nobody"}},
			},
		},
	},
}

func TestProjectWritesSubmittedAnswersOnly(t *testing.T) {
	fields := Project(form, model.AnswerSet{
		"tags":    []any{"a"},
		"why":     "hidden but answered",
		"unknown": "ignored",
	})

	assert.Equal(t, map[string]any{
		"fldTags": []any{"a"},
		"fldWhy":  "hidden but answered",
	}, fields)
	assert.NotContains(t, fields, "fldName")
}

func TestProjectEmptyAnswers(t *testing.T) {
	assert.Empty(t, Project(form, model.AnswerSet{}))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Tags", FieldLabels(form)["fldTags"])
	assert.Equal(t, "Why", QuestionLabels(form)["why"])
	assert.Len(t, QuestionLabels(form), 3)
}
