package model

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	SingleLineText      QuestionType = "single_line_text"
	MultilineText       QuestionType = "multiline_text"
	SingleSelect        QuestionType = "single_select"
	MultipleSelect      QuestionType = "multiple_select"
	MultipleAttachments QuestionType = "multiple_attachments"
)

// legacy spellings are the external system's field type names, which
// older form definitions were stored with
var questionTypes = map[string]QuestionType{
	"single_line_text":     SingleLineText,
	"multiline_text":       MultilineText,
	"single_select":        SingleSelect,
	"multiple_select":      MultipleSelect,
	"multiple_attachments": MultipleAttachments,
	"singleLineText":       SingleLineText,
	"multilineText":        MultilineText,
	"singleSelect":         SingleSelect,
	"multipleSelects":      MultipleSelect,
	"multipleAttachments":  MultipleAttachments,
}

func ParseQuestionType(s string) (QuestionType, error) {
	if t, ok := questionTypes[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unsupported question type %q", s)
}

func (t QuestionType) IsSelect() bool {
	return t == SingleSelect || t == MultipleSelect
}

func (t *QuestionType) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	*t, err = ParseQuestionType(s)
	return
}

type Logic string

const (
	LogicAll Logic = "ALL"
	LogicAny Logic = "ANY"
)

var logics = map[string]Logic{
	"ALL": LogicAll,
	"ANY": LogicAny,
	"AND": LogicAll,
	"OR":  LogicAny,
}

func ParseLogic(s string) (Logic, error) {
	if l, ok := logics[s]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unsupported rule logic %q", s)
}

func (l *Logic) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	*l, err = ParseLogic(s)
	return
}

type Operator string

const (
	OpEquals    Operator = "EQUALS"
	OpNotEquals Operator = "NOT_EQUALS"
	OpContains  Operator = "CONTAINS"
)

var operators = map[string]Operator{
	"EQUALS":     OpEquals,
	"NOT_EQUALS": OpNotEquals,
	"CONTAINS":   OpContains,
	"equals":     OpEquals,
	"notEquals":  OpNotEquals,
	"contains":   OpContains,
}

func ParseOperator(s string) (Operator, error) {
	if op, ok := operators[s]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unsupported condition operator %q", s)
}

func (op *Operator) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	*op, err = ParseOperator(s)
	return
}
