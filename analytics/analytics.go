// Package analytics summarizes a form's stored responses.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/rules"
)

type Report struct {
	FormID         string                     `json:"formId"`
	FormTitle      string                     `json:"formTitle"`
	TotalResponses int                        `json:"totalResponses"`
	Questions      map[string]QuestionSummary `json:"questionAnalytics"`
}

type QuestionSummary struct {
	Label         string             `json:"label"`
	Type          model.QuestionType `json:"type"`
	TotalAnswers  int                `json:"totalAnswers"`
	UniqueAnswers []any              `json:"uniqueAnswers"`
	Distribution  map[string]int     `json:"distribution"`
}

type tally struct {
	summary QuestionSummary
	unique  map[string]any
}

// Aggregate tallies the answers of responses in a single pass. Each element
// of a list answer counts once; answers to unknown questions are skipped.
func Aggregate(form model.Form, responses []model.Response) Report {
	tallies := make(map[string]*tally, len(form.Questions))
	for _, q := range form.Questions {
		tallies[q.QuestionKey] = &tally{
			summary: QuestionSummary{
				Label:        q.Label,
				Type:         q.Type,
				Distribution: map[string]int{},
			},
			unique: map[string]any{},
		}
	}

	for _, r := range responses {
		for key, answer := range r.Answers {
			t, ok := tallies[key]
			if !ok {
				continue
			}
			if rules.IsSequence(answer) {
				for _, v := range rules.Elements(answer) {
					t.add(v)
				}
			} else {
				t.add(answer)
			}
		}
	}

	report := Report{
		FormID:         form.ID,
		FormTitle:      form.Title,
		TotalResponses: len(responses),
		Questions:      make(map[string]QuestionSummary, len(tallies)),
	}
	for key, t := range tallies {
		keys := make([]string, 0, len(t.unique))
		for k := range t.unique {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t.summary.UniqueAnswers = make([]any, len(keys))
		for i, k := range keys {
			t.summary.UniqueAnswers[i] = t.unique[k]
		}
		report.Questions[key] = t.summary
	}
	return report
}

func (t *tally) add(v any) {
	key := Key(v)
	t.summary.TotalAnswers++
	t.summary.Distribution[key]++
	if _, seen := t.unique[key]; !seen {
		t.unique[key] = v
	}
}

// Key is the string form an answer value is tallied under.
func Key(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

type Stats struct {
	Total   int            `json:"total"`
	Active  int            `json:"active"`
	Deleted int            `json:"deleted"`
	ByDate  map[string]int `json:"byDate"`
}

// Summarize counts responses by external deletion state and by UTC
// creation date.
func Summarize(responses []model.Response) Stats {
	stats := Stats{
		Total:  len(responses),
		ByDate: map[string]int{},
	}
	for _, r := range responses {
		if r.DeletedInExternal {
			stats.Deleted++
		} else {
			stats.Active++
		}
		stats.ByDate[r.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	return stats
}
