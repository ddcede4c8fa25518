package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// Sensitive field names that should be redacted.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"auth",
	"credential",
}

// Patterns for secrets that should be redacted.
var secretPatterns = []*regexp.Regexp{
	// HTTP basic auth headers
	regexp.MustCompile(`(?i)basic\s+([a-zA-Z0-9+/=]{8,})`),
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),

	// Generic long strings that look like secrets
	regexp.MustCompile(`(?i)(key|token|secret|password|auth)[=:]["']?([a-zA-Z0-9+/=_-]{16,})["']?`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces sensitive information in a string.
func Redact(s string) string {
	result := s

	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}

	return result
}

// RedactURL strips userinfo from a URL so endpoints can be logged safely.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Redact(raw)
	}
	if u.User != nil {
		u.User = url.User(RedactedValue)
	}
	return u.String()
}

// RedactMap redacts sensitive fields in a map.
func RedactMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(m))

	for k, v := range m {
		if IsSensitiveField(k) {
			result[k] = RedactedValue
		} else if nested, ok := v.(map[string]interface{}); ok {
			result[k] = RedactMap(nested)
		} else if str, ok := v.(string); ok {
			result[k] = Redact(str)
		} else {
			result[k] = v
		}
	}

	return result
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}
