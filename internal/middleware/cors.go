package middleware

import (
	"strings"
)

const defaultOrigin = "http://localhost:3000"

// FallbackOrigins parses a comma-separated FRONTEND_URL into origins used
// until a CORS policy is stored.
func FallbackOrigins(frontendURL string) []string {
	seen := make(map[string]struct{})
	var origins []string
	for _, origin := range strings.Split(frontendURL, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		return []string{defaultOrigin}
	}
	return origins
}
