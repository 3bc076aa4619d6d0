package videourl

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"v not first param", "https://www.youtube.com/watch?list=PL1&v=abc123&index=2", "abc123"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=share", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"surrounding space", "  https://youtu.be/xyz  ", "xyz"},
		{"other site", "https://example.com/video", "https://example.com/video"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.url); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if got := Label("https://youtu.be/abc", 20); got != "abc" {
		t.Errorf("Label() = %q, want abc", got)
	}
	if got := Label("https://example.com/a/very/long/path", 10); got != "https://e…" {
		t.Errorf("Label() = %q", got)
	}
}
