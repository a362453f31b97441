package shared

import "testing"

func TestToTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"style", "Style"},
		{"camelCase", "CamelCase"},
		{"Already", "Already"},
		{"", ""},
		{"x", "X"},
		{"élan", "Élan"},
	}

	for _, tt := range tests {
		if got := ToTitle(tt.in); got != tt.want {
			t.Errorf("ToTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
