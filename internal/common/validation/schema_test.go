package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"count", "className"},
		Properties: map[string]Property{
			"count":     {Type: "integer", Minimum: floatPtr(0), Maximum: floatPtr(10)},
			"className": {Type: "string", Pattern: strPtr(ClassNamePattern)},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
		wantCode  string
	}{
		{"valid", map[string]interface{}{"count": 3, "className": "Contact"}, true, "", ""},
		{"missing class", map[string]interface{}{"count": 3}, false, "className", "REQUIRED_FIELD_MISSING"},
		{"above maximum", map[string]interface{}{"count": 11, "className": "Contact"}, false, "count", "MAXIMUM_VIOLATION"},
		{"negative", map[string]interface{}{"count": -1, "className": "Contact"}, false, "count", "MINIMUM_VIOLATION"},
		{"wrong type", map[string]interface{}{"count": "3", "className": "Contact"}, false, "count", "INVALID_TYPE"},
		{"bad class", map[string]interface{}{"count": 3, "className": "1st-class"}, false, "className", "PATTERN_MISMATCH"},
		{"extra field", map[string]interface{}{"count": 3, "className": "Contact", "x": true}, false, "x", "EXTRA_FIELD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.wantField))
				assert.Equal(t, tt.wantCode, result.Errors[0].Code)
				assert.Contains(t, result.String(), tt.wantField)
			}
		})
	}
}

func TestValidateClassName(t *testing.T) {
	assert.True(t, ValidateClassName("Contact"))
	assert.True(t, ValidateClassName("Lead_2024"))
	assert.False(t, ValidateClassName("_User"))
	assert.False(t, ValidateClassName(""))
	assert.False(t, ValidateClassName("my class"))
}
