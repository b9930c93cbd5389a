package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationResultSchema(t *testing.T) {
	v, err := NewValidator(ClassificationResultSchema)
	require.NoError(t, err)

	tests := []struct {
		name  string
		doc   string
		valid bool
		field string
	}{
		{
			name:  "complete result",
			doc:   `{"intents":[{"intent":"Offer","confidence":0.9}],"entities":[{"entity":"sys-currency","value":"$10","metadata":{"numeric_value":10,"unit":"USD"}}],"input":{"text":"hi","role":"buyer"}}`,
			valid: true,
		},
		{
			name:  "input omitted",
			doc:   `{"intents":[{"intent":"AcceptOffer","confidence":0.5}],"entities":[]}`,
			valid: true,
		},
		{
			name:  "missing entities",
			doc:   `{"intents":[{"intent":"Offer","confidence":0.9}]}`,
			field: "(root)",
		},
		{
			name:  "empty intents",
			doc:   `{"intents":[],"entities":[]}`,
			field: "intents",
		},
		{
			name:  "confidence out of range",
			doc:   `{"intents":[{"intent":"Offer","confidence":1.5}],"entities":[]}`,
			field: "intents.0.confidence",
		},
		{
			name:  "numeric entity value",
			doc:   `{"intents":[{"intent":"Offer","confidence":0.9}],"entities":[{"entity":"sys-number","value":5}]}`,
			field: "entities.0.value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Error())
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.field, res.Errors[0].Field)
			}
		})
	}
}

func TestValidateBytes_NotJSON(t *testing.T) {
	v := MustValidator(ChatMessageSchema)
	_, err := v.ValidateBytes([]byte("{nope"))
	assert.Error(t, err)
}

func TestChatMessageSchema(t *testing.T) {
	v := MustValidator(ChatMessageSchema)

	res, err := v.ValidateGo(map[string]interface{}{"speaker": "Watson", "text": "hello"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.ValidateGo(map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustValidator(`{"type": 12}`) })
}
