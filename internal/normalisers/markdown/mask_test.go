package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskFencedCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no fences",
			input:    "plain ## text\n",
			expected: "plain ## text\n",
		},
		{
			name:     "backtick fence",
			input:    "a\n```go\ncode\n```\nb",
			expected: "a\n     \n    \n   \nb",
		},
		{
			name:     "unclosed tilde fence runs to end",
			input:    "x\n~~~\nhidden",
			expected: "x\n   \n      ",
		},
		{
			name:     "shorter fence does not close",
			input:    "````\n```\n````\nz",
			expected: "    \n   \n    \nz",
		},
		{
			name:     "carriage returns kept",
			input:    "```\r\nx\r\n```\r\ny",
			expected: "   \r\n \r\n   \r\ny",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MaskFencedCode(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.Len(t, got, len(tc.input))
		})
	}
}
