package indexer

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse spaces", "a  b   c", "a b c"},
		{"tabs and newlines", "a\tb\nc\r\nd", "a b c d"},
		{"trim", "  hello world  ", "hello world"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"already clean", "a b c", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	in := "  a\tmessy\n\n  string \r\n here  "
	once := Sanitize(in)
	if twice := Sanitize(once); twice != once {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}
