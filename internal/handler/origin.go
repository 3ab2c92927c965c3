package handler

import (
	"strings"
)

// OriginAllowed reports whether a browser origin may use the viewer. With no
// configured origins only the serving host and localhost are accepted.
func OriginAllowed(origin string, allowedOrigins []string, host string) bool {
	if origin == "" {
		return false
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	normalized = strings.TrimSuffix(normalized, "/")

	if len(allowedOrigins) == 0 {
		return normalized == host ||
			strings.HasPrefix(normalized, "localhost") ||
			strings.HasPrefix(normalized, "127.0.0.1")
	}

	for _, entry := range allowedOrigins {
		candidate := strings.TrimSpace(entry)
		if candidate == "" {
			continue
		}
		if candidate == origin || candidate == normalized {
			return true
		}
		if strings.TrimPrefix(candidate, "http://") == normalized || strings.TrimPrefix(candidate, "https://") == normalized {
			return true
		}
	}

	return false
}
