package urlcanon

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"drops query and fragment", "https://Example.com/story/1?utm_source=fb#top", "https://example.com/story/1"},
		{"lowercases host only", "HTTPS://Example.COM/Story/1", "HTTPS://example.com/Story/1"},
		{"trims one trailing slash", "https://example.com/story/1/", "https://example.com/story/1"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"defaults empty path to root", "https://example.com", "https://example.com/"},
		{"rejects missing scheme", "example.com/story/1", ""},
		{"rejects missing host", "file:///story/1", ""},
		{"rejects empty input", "", ""},
		{"rejects whitespace-only input", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.in); got != tc.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	in := "https://Example.com/story/1/?ref=home"
	once := Canonicalize(in)
	twice := Canonicalize(once)
	if once != twice {
		t.Errorf("Canonicalize is not idempotent: %q != %q", once, twice)
	}
}
