package env

import (
	"os"
	"strings"
)

// Get reads an environment variable and falls back when it is unset or
// blank. Values are trimmed so a stray trailing space in a deploy manifest
// does not leak into log levels or service names.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
