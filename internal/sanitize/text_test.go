package sanitize

import (
	"strings"
	"testing"
)

func TestText_RemovesAllHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "script tag",
			input:    `Hello <script>alert('xss')</script> World`,
			expected: `Hello  World`,
		},
		{
			name:     "inline event handler",
			input:    `<div onclick="alert('xss')">Click me</div>`,
			expected: `Click me`,
		},
		{
			name:     "mixed HTML tags",
			input:    `<b>Bold</b> <i>Italic</i> <a href="http://example.com">Link</a>`,
			expected: `Bold Italic Link`,
		},
		{
			name:     "entities come back literal",
			input:    `Tom & Jerry's "Show"`,
			expected: `Tom & Jerry's "Show"`,
		},
		{
			name:     "ansi escape removed",
			input:    "Standup\x1b[2J\x1b[31m",
			expected: "Standup[2J[31m",
		},
		{
			name:     "newlines and tabs kept",
			input:    "Agenda:\n\t- intro",
			expected: "Agenda:\n\t- intro",
		},
		{
			name:     "plain text unchanged",
			input:    `Just plain text`,
			expected: `Just plain text`,
		},
		{
			name:     "empty string",
			input:    ``,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{name: "fits", input: "Team sync", width: 20, expected: "Team sync"},
		{name: "folds whitespace", input: "Team\n\tsync  notes", width: 0, expected: "Team sync notes"},
		{name: "truncates", input: "Quarterly planning review", width: 10, expected: "Quarterly…"},
		{name: "multibyte runes", input: "Café réunion", width: 5, expected: "Café…"},
		{name: "one rune", input: "Lunch", width: 1, expected: "…"},
		{name: "strips tags first", input: "<b>Launch</b> party", width: 0, expected: "Launch party"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Cell(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("Cell(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

// Test real-world XSS attack vectors
func TestText_CommonXSSVectors(t *testing.T) {
	vectors := []struct {
		name  string
		input string
	}{
		{"Basic XSS", `<script>alert('XSS')</script>`},
		{"IMG onerror", `<img src=x onerror=alert('XSS')>`},
		{"SVG onload", `<svg onload=alert('XSS')>`},
		{"JavaScript protocol", `<a href="javascript:alert('XSS')">Click</a>`},
		{"Data URI", `<a href="data:text/html,<script>alert('XSS')</script>">Click</a>`},
		{"Meta refresh", `<meta http-equiv="refresh" content="0;url=javascript:alert('XSS')">`},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			result := Text(v.input)
			for _, d := range []string{"alert", "javascript:", "<script"} {
				if strings.Contains(result, d) {
					t.Errorf("Text(%q) still contains dangerous content %q: %q", v.input, d, result)
				}
			}
		})
	}
}

func BenchmarkText_ShortString(b *testing.B) {
	input := "Standup at <b>Room 4</b>"
	for i := 0; i < b.N; i++ {
		Text(input)
	}
}

func BenchmarkCell_LongString(b *testing.B) {
	input := strings.Repeat("Lorem ipsum <i>dolor</i> sit amet. ", 20)
	for i := 0; i < b.N; i++ {
		Cell(input, 40)
	}
}
