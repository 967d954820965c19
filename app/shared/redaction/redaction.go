package redaction

import "strings"

const redactedValue = "[redacted]"

// RedactSecret returns a fixed placeholder for non-empty secrets.
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return redactedValue
}

// RedactURLCredentials hides the user info of a URL such as a Loki push
// endpoint with basic auth baked in.
func RedactURLCredentials(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 || strings.Contains(rest[:at], "/") {
		return raw
	}
	return scheme + "://" + redactedValue + "@" + rest[at+1:]
}
