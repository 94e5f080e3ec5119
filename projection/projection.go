// Package projection maps answers between question keys and the external
// table's field identifiers.
package projection

import "github.com/mbolis/quick-form/model"

// Project returns the external record fields for a validated answer set.
// Every question with a submitted answer is written through, visible or
// not; questions without an answer are left out.
func Project(form model.Form, answers model.AnswerSet) map[string]any {
	fields := make(map[string]any, len(answers))
	for _, q := range form.Questions {
		if v, ok := answers[q.QuestionKey]; ok {
			fields[q.ExternalFieldID] = v
		}
	}
	return fields
}

// FieldLabels maps external field ids to question labels.
func FieldLabels(form model.Form) map[string]string {
	labels := make(map[string]string, len(form.Questions))
	for _, q := range form.Questions {
		labels[q.ExternalFieldID] = q.Label
	}
	return labels
}

// QuestionLabels maps question keys to question labels.
func QuestionLabels(form model.Form) map[string]string {
	labels := make(map[string]string, len(form.Questions))
	for _, q := range form.Questions {
		labels[q.QuestionKey] = q.Label
	}
	return labels
}
