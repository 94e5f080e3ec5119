package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionUnmarshalNormalizesLegacyNames(t *testing.T) {
	raw := `{
		"questionKey": "colors",
		"externalFieldId": "fldColors",
		"label": "Colors",
		"type": "multipleSelects",
		"options": ["red", "blue"],
		"conditionalRule": {
			"logic": "AND",
			"conditions": [{"questionKey": "likes", "operator": "notEquals", "value": "no"}]
		}
	}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, MultipleSelect, q.Type)
	require.NotNil(t, q.ConditionalRule)
	assert.Equal(t, LogicAll, q.ConditionalRule.Logic)
	assert.Equal(t, OpNotEquals, q.ConditionalRule.Conditions[0].Operator)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"multiple_select"`)
	assert.Contains(t, string(out), `"logic":"ALL"`)
	assert.Contains(t, string(out), `"operator":"NOT_EQUALS"`)
}

func TestUnmarshalRejectsUnknownEnumValues(t *testing.T) {
	cases := map[string]string{
		"type":     `{"type": "rating"}`,
		"logic":    `{"type": "single_line_text", "conditionalRule": {"logic": "XOR", "conditions": []}}`,
		"operator": `{"type": "single_line_text", "conditionalRule": {"logic": "ANY", "conditions": [{"operator": "gt"}]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var q Question
			assert.Error(t, json.Unmarshal([]byte(raw), &q))
		})
	}
}

func TestFormQuestion(t *testing.T) {
	f := Form{Questions: []Question{{QuestionKey: "a"}, {QuestionKey: "b", Label: "B"}}}

	q, ok := f.Question("b")
	assert.True(t, ok)
	assert.Equal(t, "B", q.Label)

	_, ok = f.Question("c")
	assert.False(t, ok)
}
