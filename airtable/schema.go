package airtable

import "github.com/mbolis/quick-form/model"

type Table struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PrimaryFieldID string  `json:"primaryFieldId"`
	Fields         []Field `json:"fields"`
}

type Field struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Options *FieldOptions `json:"options,omitempty"`
}

type FieldOptions struct {
	Choices []Choice `json:"choices,omitempty"`
}

type Choice struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// SupportedField is a table field that can back a question.
type SupportedField struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Type    model.QuestionType `json:"type"`
	Options []string           `json:"options,omitempty"`
}

var supportedTypes = map[string]model.QuestionType{
	"singleLineText":      model.SingleLineText,
	"multilineText":       model.MultilineText,
	"singleSelect":        model.SingleSelect,
	"multipleSelects":     model.MultipleSelect,
	"multipleAttachments": model.MultipleAttachments,
}

// SupportedFields keeps the fields of a type forms can collect, in table
// order, with select choices as options.
func SupportedFields(t Table) []SupportedField {
	fields := []SupportedField{}
	for _, f := range t.Fields {
		typ, ok := supportedTypes[f.Type]
		if !ok {
			continue
		}
		sf := SupportedField{ID: f.ID, Name: f.Name, Type: typ}
		if f.Options != nil {
			for _, c := range f.Options.Choices {
				sf.Options = append(sf.Options, c.Name)
			}
		}
		fields = append(fields, sf)
	}
	return fields
}

// CheckQuestions verifies every question points to a supported field of
// the table with a matching type. It returns the offending question key.
func CheckQuestions(t Table, questions []model.Question) (string, bool) {
	byID := map[string]SupportedField{}
	for _, f := range SupportedFields(t) {
		byID[f.ID] = f
	}
	for _, q := range questions {
		f, ok := byID[q.ExternalFieldID]
		if !ok || f.Type != q.Type {
			return q.QuestionKey, false
		}
	}
	return "", true
}
