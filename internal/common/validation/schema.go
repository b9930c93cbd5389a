package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ClassificationResultSchema describes what the classifier must return.
// input is optional; the caller fills it from the request when absent.
const ClassificationResultSchema = `{
  "type": "object",
  "required": ["intents", "entities"],
  "properties": {
    "intents": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["intent", "confidence"],
        "properties": {
          "intent": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["entity", "value"],
        "properties": {
          "entity": {"type": "string"},
          "value": {"type": "string"},
          "metadata": {
            "type": ["object", "null"],
            "properties": {
              "numeric_value": {"type": "number"},
              "unit": {"type": "string"}
            }
          }
        }
      }
    },
    "input": {
      "type": ["object", "null"],
      "properties": {
        "text": {"type": "string"},
        "role": {"type": "string"},
        "addressee": {"type": ["string", "null"]}
      }
    }
  }
}`

// ChatMessageSchema is the minimum shape of a message the relay accepts.
const ChatMessageSchema = `{
  "type": "object",
  "required": ["speaker"],
  "properties": {
    "speaker": {"type": "string", "minLength": 1},
    "addressee": {"type": ["string", "null"]},
    "text": {"type": "string"}
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins every failure into one message.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator checks documents against one compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles a JSON schema.
func NewValidator(schema string) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// MustValidator panics if the schema does not compile. For package-level schemas.
func MustValidator(schema string) *Validator {
	v, err := NewValidator(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateBytes validates a raw JSON document.
func (v *Validator) ValidateBytes(doc []byte) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateGo validates an already decoded value.
func (v *Validator) ValidateGo(doc interface{}) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewGoLoader(doc))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
