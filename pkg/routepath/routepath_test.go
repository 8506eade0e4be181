package routepath

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		raw       string
		wantPath  string
		wantQuery string
		wantHash  string
	}{
		{"/users", "/users", "", ""},
		{"/users?page=2", "/users", "page=2", ""},
		{"/users#top", "/users", "", "top"},
		{"/users?page=2&sort=asc#top", "/users", "page=2&sort=asc", "top"},
		{"/users#frag?not-a-query", "/users", "", "frag?not-a-query"},
		{"", "", "", ""},
		{"?a=1", "", "a=1", ""},
	}

	for _, tt := range tests {
		path, query, hash := Split(tt.raw)
		if path != tt.wantPath || query != tt.wantQuery || hash != tt.wantHash {
			t.Errorf("Split(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tt.raw, path, query, hash, tt.wantPath, tt.wantQuery, tt.wantHash)
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		path, query, hash string
		want              string
	}{
		{"/users", "", "", "/users"},
		{"/users", "page=2", "", "/users?page=2"},
		{"/users", "", "top", "/users#top"},
		{"/users", "page=2", "top", "/users?page=2#top"},
	}

	for _, tt := range tests {
		got := Join(tt.path, tt.query, tt.hash)
		if got != tt.want {
			t.Errorf("Join(%q, %q, %q) = %q, want %q", tt.path, tt.query, tt.hash, got, tt.want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "/"},
		{"/", "/"},
		{"/users", "/users"},
		{"users", "/users"},
		{"/users/", "/users"},
		{"/blog//post", "/blog/post"},
		{"/blog/./post", "/blog/post"},
		{"/blog/../other", "/other"},
		{"/a/b/c///", "/a/b/c"},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.input)
		if err != nil {
			t.Errorf("Canonicalize(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalizeRejects(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"http://evil.example/", ErrAbsoluteURL},
		{"https://evil.example/x", ErrAbsoluteURL},
		{"//evil.example", ErrAbsoluteURL},
		{"/a\\b", ErrBackslashInPath},
		{"/a\x00b", ErrNullByteInPath},
		{"/a%00b", ErrNullByteInPath},
		{"/a%GGb", ErrInvalidPercentEscape},
		{"/a%2", ErrInvalidPercentEscape},
		{"/../secret", ErrPathEscapesRoot},
		{"/a/../../secret", ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		_, err := Canonicalize(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Canonicalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/users", []string{"users"}},
		{"/users/42/posts", []string{"users", "42", "posts"}},
		{"/caf%C3%A9", []string{"café"}},
	}

	for _, tt := range tests {
		got, err := Segments(tt.path)
		if err != nil {
			t.Errorf("Segments(%q) unexpected error: %v", tt.path, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Segments(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}
