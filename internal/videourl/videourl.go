// Package videourl extracts video identifiers from the URLs users paste.
// It applies the same rules the summarization backend uses, so the id shown
// locally matches the one the backend looks up.
package videourl

import "strings"

// ExtractVideoID returns the video id of url:
//   - the value of the first "v=" parameter, up to the next "&"
//   - otherwise the path segment after "youtu.be/", up to the next "?"
//   - otherwise url itself
func ExtractVideoID(url string) string {
	url = strings.TrimSpace(url)

	if _, after, ok := strings.Cut(url, "v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	if _, after, ok := strings.Cut(url, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return id
	}
	return url
}

// Label is a short display name for url: its video id, trimmed to max runes
func Label(url string, max int) string {
	id := []rune(ExtractVideoID(url))
	if max > 1 && len(id) > max {
		return string(id[:max-1]) + "…"
	}
	return string(id)
}
