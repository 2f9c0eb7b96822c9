// Package pathutil normalizes request paths for metrics labels.
package pathutil

import (
	"regexp"
	"strings"
)

// pathPattern pairs a route regex with its normalized template.
type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

// pathPatterns lists the dynamic routes, most specific first.
// Pre-compiled at initialization.
var pathPatterns = []pathPattern{
	{pattern: regexp.MustCompile(`^/notifications/[^/]+/read$`), template: "/notifications/:id/read"},
	{pattern: regexp.MustCompile(`^/workers/[a-z]+$`), template: "/workers/:channel"},
}

// NormalizePath converts ID-carrying paths to template form so metrics label
// cardinality stays bounded. Static paths pass through unchanged.
//
// Examples:
//
//	NormalizePath("/notifications/9f3a.../read") // "/notifications/:id/read"
//	NormalizePath("/workers/email")              // "/workers/:channel"
//	NormalizePath("/preferences")                // "/preferences" (unchanged)
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
