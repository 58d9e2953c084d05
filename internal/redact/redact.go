// Package redact scrubs credentials, tokens, connection strings, file paths
// and SQL from text before it is logged or returned to clients.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; earlier rules see the original text.
var rules = []rule{
	// user:password@ part of connection URLs
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb|redis)://[^@\s]+@`), "$1://" + CredentialPlaceholder + "@"},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)(\s*[=:]\s*['"]?)[^'"&\s]{3,}`), "$1$2" + CredentialPlaceholder},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[REDACTED_JWT]"},
	// Google API keys, as used for Gemini
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`), KeyPlaceholder},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|authorization|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), "$1$2" + KeyPlaceholder},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[^;]*?\b(FROM|INTO|SET)\b[^;]*`), "[REDACTED_SQL]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(?:\\[^\\\s]+)+`), PathPlaceholder},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(?:\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
