package seed

import "contact-seeder/internal/common/validation"

func GetInputSchema(maxCount int) validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"count", "className"},
		Properties: map[string]validation.Property{
			"count": {
				Type:        "integer",
				Description: "Number of objects to create",
				Minimum:     floatPtr(0),
				Maximum:     floatPtr(float64(maxCount)),
			},
			"className": {
				Type:        "string",
				Description: "Class the objects are tagged with",
				Pattern:     strPtr(validation.ClassNamePattern),
				MaxLength:   intPtr(128),
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}
