// Package urlcanon canonicalizes article URLs before the dedup check, so
// the same story scraped twice - with or without tracking parameters,
// with or without a trailing slash - always maps to one stored row.
package urlcanon

import (
	"net/url"
	"strings"
)

// Canonicalize parses raw and applies, in order: reject (return "") if
// scheme or host is missing, lowercase the host, drop query and fragment
// entirely, default an empty path to "/", and trim trailing slashes
// unless the path is exactly "/" (all of them, so a second pass is a
// no-op). Scheme and path case are preserved.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	// url.Parse lower-cases the scheme; restore it as written.
	u.Scheme = raw[:len(u.Scheme)]
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	if u.Path == "" {
		u.Path = "/"
	} else if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	return u.String()
}
