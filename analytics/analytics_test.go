package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/model"
)

var form = model.Form{
	ID:    "form-1",
	Title: "Feedback",
	Questions: []model.Question{
		{QuestionKey: "q1", Label: "Colors", Type: model.MultipleSelect, Options: []string{"x", "y"}},
		{QuestionKey: "q2", Label: "Name", Type: model.SingleLineText},
		{QuestionKey: "q3", Label: "Never answered", Type: model.MultilineText},
	},
}

func TestAggregateMultiSelect(t *testing.T) {
	report := Aggregate(form, []model.Response{
		{Answers: model.AnswerSet{"q1": []any{"x", "y"}}},
		{Answers: model.AnswerSet{"q1": []any{"x"}}},
	})

	q1 := report.Questions["q1"]
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, q1.Distribution)
	assert.Equal(t, 3, q1.TotalAnswers)
	assert.Equal(t, []any{"x", "y"}, q1.UniqueAnswers)
	assert.Equal(t, "Colors", q1.Label)
	assert.Equal(t, model.MultipleSelect, q1.Type)
}

func TestAggregateScalarsAndUnknownKeys(t *testing.T) {
	report := Aggregate(form, []model.Response{
		{Answers: model.AnswerSet{"q2": "bob", "gone": "ignored"}},
		{Answers: model.AnswerSet{"q2": "alice"}},
		{Answers: model.AnswerSet{"q2": "bob"}},
	})

	assert.Equal(t, "form-1", report.FormID)
	assert.Equal(t, "Feedback", report.FormTitle)
	assert.Equal(t, 3, report.TotalResponses)
	require.Len(t, report.Questions, 3)
	assert.NotContains(t, report.Questions, "gone")

	q2 := report.Questions["q2"]
	assert.Equal(t, 3, q2.TotalAnswers)
	assert.Equal(t, map[string]int{"bob": 2, "alice": 1}, q2.Distribution)
	assert.Equal(t, []any{"alice", "bob"}, q2.UniqueAnswers)

	q3 := report.Questions["q3"]
	assert.Zero(t, q3.TotalAnswers)
	assert.Empty(t, q3.UniqueAnswers)
	assert.Empty(t, q3.Distribution)
}

func TestAggregateAttachmentsUseJSONKeys(t *testing.T) {
	f := model.Form{Questions: []model.Question{{QuestionKey: "files", Type: model.MultipleAttachments}}}
	attachment := map[string]any{"url": "https://example.com/a.png"}

	report := Aggregate(f, []model.Response{{Answers: model.AnswerSet{"files": []any{attachment}}}})

	assert.Equal(t, map[string]int{`{"url":"https://example.com/a.png"}`: 1}, report.Questions["files"].Distribution)
	assert.Equal(t, []any{attachment}, report.Questions["files"].UniqueAnswers)
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC)

	stats := Summarize([]model.Response{
		{CreatedAt: day1},
		{CreatedAt: day1.Add(time.Hour), DeletedInExternal: true},
		{CreatedAt: day2},
	})

	assert.Equal(t, Stats{
		Total:   3,
		Active:  2,
		Deleted: 1,
		ByDate:  map[string]int{"2024-03-01": 2, "2024-03-02": 1},
	}, stats)
}
