package okta

import (
	"net/http"
	"net/url"
	"strings"
)

// nextCursor extracts the "after" cursor from the RFC 5988 Link header the
// admin API uses for pagination:
//
//	Link: <https://org.okta.com/api/v1/users?after=100u...&limit=200>; rel="next"
//
// Returns the empty string when no next page exists.
func nextCursor(header http.Header) string {
	for _, link := range header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			target, rel, ok := parseLinkValue(part)
			if !ok || rel != "next" {
				continue
			}
			u, err := url.Parse(target)
			if err != nil {
				continue
			}
			if after := u.Query().Get("after"); after != "" {
				return after
			}
		}
	}
	return ""
}

// parseLinkValue splits one `<uri>; rel="next"` element into its parts.
func parseLinkValue(value string) (target, rel string, ok bool) {
	segments := strings.Split(strings.TrimSpace(value), ";")
	if len(segments) < 2 {
		return "", "", false
	}

	target = strings.TrimSpace(segments[0])
	if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
		return "", "", false
	}
	target = strings.Trim(target, "<>")

	for _, param := range segments[1:] {
		key, val, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || strings.TrimSpace(key) != "rel" {
			continue
		}
		return target, strings.Trim(strings.TrimSpace(val), `"`), true
	}

	return "", "", false
}
