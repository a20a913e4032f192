package urlnorm

import (
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "Example.com/news/../tech/latest",
			want: "https://example.com/tech/latest",
		},
		{
			name: "removes default port and tracking params",
			in:   "http://news.example.com:80/article?id=123&utm_source=rss#section",
			want: "http://news.example.com/article?id=123",
		},
		{
			name: "sorts query parameters and preserves trailing slash",
			in:   "https://example.com/path/?b=2&a=1&fbclid=xyz",
			want: "https://example.com/path/?a=1&b=2",
		},
		{
			name: "handles schemeless url with double slash",
			in:   "//blog.example.com/post/42?utm_medium=email",
			want: "https://blog.example.com/post/42",
		},
		{
			name: "normalises repeated slashes",
			in:   "https://example.com//a//b///c",
			want: "https://example.com/a/b/c",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.in)
			if err != nil {
				t.Fatalf("Canonical() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Canonical() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalErrors(t *testing.T) {
	t.Parallel()
	if _, err := Canonical(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := Canonical(":///invalid"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()
	raw := "https://Example.com/Article?utm_campaign=foo&a=1&b=2"
	fp1, err := Fingerprint(raw)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fp2, err := Fingerprint(strings.ReplaceAll(raw, "https://", "HTTPS://"))
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp1 == "" || fp1 != fp2 {
		t.Fatalf("expected deterministic fingerprint, got %s vs %s", fp1, fp2)
	}
}
