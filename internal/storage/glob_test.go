package storage

import "testing"

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"foo*", "foobar", true},
		{"foo*", "fo", false},
		{"f?o", "foo", true},
		{"f?o", "fo", false},
		{"[abc]", "a", true},
		{"[abc]", "d", false},
		{"[^abc]", "d", true},
		{"[^abc]", "a", false},
		{"[a-c]", "b", true},
		{"[a-c]", "d", false},
		{"[]a]", "]", true},
		{"[]a]", "a", true},
		{"h[ae]llo", "hello", true},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
		{"exact", "exact", true},
		{"exact", "exacts", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			got := matchGlob(tt.pattern, tt.key)
			if got != tt.want {
				t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestMatchGlob_NonUTF8KeyNeverMatches(t *testing.T) {
	invalid := string([]byte{0xff, 0xfe})
	if matchGlob("*", invalid) {
		t.Errorf("expected non-UTF-8 key to never match, even against '*'")
	}
}
