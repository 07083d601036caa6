package playlist

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/jscyril/mp3miner/api"
)

var disallowedChars = regexp.MustCompile(`[^A-Za-z0-9\s]`)

// DisplayName derives a human readable track name from a media URL.
// index is zero based and only used for the "Track N" fallback.
func DisplayName(u api.MediaURL, index int) string {
	name := baseName(string(u))
	name = strings.TrimSuffix(name, path.Ext(name))

	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = disallowedChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")

	if name == "" {
		return fmt.Sprintf("Track %d", index+1)
	}
	return name
}

// baseName returns the still-escaped last path segment of a URL
func baseName(raw string) string {
	if parsed, err := url.Parse(raw); err == nil {
		return path.Base(parsed.EscapedPath())
	}

	raw, _, _ = strings.Cut(raw, "?")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return raw[i+1:]
	}
	return raw
}
