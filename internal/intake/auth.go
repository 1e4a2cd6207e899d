// internal/intake/auth.go
package intake

import "strings"

const bearerPrefix = "Bearer "

// AuthorizeBearer checks an Authorization header against the allow-list of
// pre-shared agent keys. An empty allow-list rejects everything.
func AuthorizeBearer(header string, allowedKeys []string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	for _, key := range allowedKeys {
		if key != "" && token == key {
			return token, true
		}
	}
	return "", false
}
