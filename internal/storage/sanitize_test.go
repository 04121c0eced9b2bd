package storage

import "testing"

func TestSanitizeSearchTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, input, want string
	}{
		{"plain", "monkey pictures", "monkey pictures"},
		{"non-latin", "बंदर", "बंदर"},
		{"percent", "100%", `100\%`},
		{"underscore", "class_5", `class\_5`},
		{"backslash", `a\b`, `a\\b`},
		{"mixed", `%_\`, `\%\_\\`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeSearchTerm(tt.input); got != tt.want {
				t.Errorf("sanitizeSearchTerm(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
