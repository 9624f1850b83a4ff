// Package redact scrubs sensitive fragments from strings before they
// reach logs or error responses: connection strings, credentials, JWT
// tokens, email addresses, SQL text, and filesystem paths.
package redact

import "regexp"

const (
	RedactedCredential = "[REDACTED_CREDENTIAL]"
	RedactedEmail      = "[REDACTED_EMAIL]"
	RedactedJWT        = "[REDACTED_JWT]"
	RedactedPath       = "[REDACTED_PATH]"
	RedactedSQL        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: credentials and tokens first, generic paths last, so a
// connection string is scrubbed as a credential rather than a path.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|smtp)://[^@\s]+@`), RedactedCredential},
	{regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|token)(['"\s:=]+)[^'"&\s]{3,}`), RedactedCredential},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), RedactedJWT},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmail},
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*().$=<>]+\s(?:FROM|INTO|SET|WHERE)[\s\w,*().$='<>]*`), RedactedSQL},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPath},
}

// String returns s with every sensitive fragment replaced by its
// placeholder.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error redacts an error's message. Safe to call with nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
