package model

import "time"

type Owner struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	ExternalToken string `json:"-"`
}

type Form struct {
	ID              string     `json:"id,omitempty"`
	OwnerID         string     `json:"ownerId,omitempty"`
	Version         int        `json:"version,omitempty"`
	Title           string     `json:"title" validate:"required,max=200"`
	ExternalBaseID  string     `json:"externalBaseId" validate:"required"`
	ExternalTableID string     `json:"externalTableId" validate:"required"`
	Questions       []Question `json:"questions" validate:"dive"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"createdAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt,omitempty"`
}

// Question returns the question with the given key, if any.
func (f Form) Question(key string) (Question, bool) {
	for _, q := range f.Questions {
		if q.QuestionKey == key {
			return q, true
		}
	}
	return Question{}, false
}

type Question struct {
	QuestionKey     string           `json:"questionKey" validate:"required"`
	ExternalFieldID string           `json:"externalFieldId" validate:"required"`
	Label           string           `json:"label" validate:"required"`
	Type            QuestionType     `json:"type" validate:"required"`
	Required        bool             `json:"required"`
	Options         []string         `json:"options,omitempty"`
	ConditionalRule *ConditionalRule `json:"conditionalRule,omitempty"`
}

// ConditionalRule gates the visibility of a question on earlier answers.
// A nil rule, or one without conditions, is always satisfied.
type ConditionalRule struct {
	Logic      Logic       `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

type Condition struct {
	QuestionKey string   `json:"questionKey"`
	Operator    Operator `json:"operator"`
	Value       any      `json:"value"`
}

// AnswerSet maps question keys to raw answer values as decoded from JSON:
// string, float64, bool, nil, []any or map[string]any.
type AnswerSet map[string]any

type Response struct {
	ID                string    `json:"id"`
	FormID            string    `json:"formId"`
	ExternalRecordID  string    `json:"externalRecordId"`
	Answers           AnswerSet `json:"answers"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	DeletedInExternal bool      `json:"deletedInExternal"`
}

// ChangeNotification is one inbound change event from the external system,
// scoped to a single base.
type ChangeNotification struct {
	BaseID    string
	Timestamp time.Time
	Tables    []TableChanges
}

type TableChanges struct {
	TableID            string
	ChangedRecordIDs   []string
	DestroyedRecordIDs []string
}
