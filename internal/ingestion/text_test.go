package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "line endings", input: "Line 1\r\nLine 2\rLine 3", expected: "Line 1\nLine 2\nLine 3"},
		{name: "inner spaces", input: "Line    with \t spaces", expected: "Line with spaces"},
		{name: "blank runs", input: "A\n\n\n\n\nB", expected: "A\n\nB"},
		{name: "bullet indent kept", input: "Skills\n  - Go\n  * SQL", expected: "Skills\n  - Go\n  * SQL"},
		{name: "plain indent dropped", input: "Title\n    body", expected: "Title\nbody"},
		{name: "trims", input: "\n\n  Title  \n\n", expected: "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestRedactPII(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "email",
			input:    "Contact: jane.doe+jobs@example.co.uk",
			expected: "Contact: [REDACTED_EMAIL]",
		},
		{
			name:     "phone formats",
			input:    "(555) 123-4567 / 555.123.4567 / +1 555-123-4567",
			expected: "[REDACTED_PHONE] / [REDACTED_PHONE] / [REDACTED_PHONE]",
		},
		{
			name:     "years untouched",
			input:    "Acme Corp 2019-2023, 10000 users",
			expected: "Acme Corp 2019-2023, 10000 users",
		},
		{
			name:     "no separators untouched",
			input:    "Order 5551234567",
			expected: "Order 5551234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactPII(tt.input))
		})
	}
}
