// Package redact scrubs credentials and other sensitive fragments from
// text bound for logs. Errors surfaced by the database driver or the
// auth layer can carry connection strings, tokens, query text, and user
// addresses; everything the API layer logs passes through here first.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules apply in order; earlier rules see the original text. The DSN
// rule runs first so credentials vanish before the host rule fires.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgresql|postgres|mysql)://[^@\s]+@`), "[DSN]"},
	{regexp.MustCompile(`(?i)\b(password|passwd|secret|jwt_secret)\s*[=:]\s*\S+`), "[SECRET]"},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|token|authorization)\s*[=:]\s*\S+`), "[SECRET]"},
	{regexp.MustCompile(`\beyJ[\w-]+\.[\w-]+\.[\w-]+`), "[JWT]"},
	{regexp.MustCompile(`\b[\w.+-]+@[\w-]+(\.[\w-]+)+\b`), "[EMAIL]"},
	{regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`), "[ID]"},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[^;]*\b(FROM|INTO|SET)\b( [^;]*)?`), "[SQL]"},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[PATH]"},
	{regexp.MustCompile(`\b[\w-]+(\.[\w-]+)+:\d{2,5}\b`), "[HOST]"},
}

// String returns s with every sensitive fragment replaced by a
// placeholder naming what was removed.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err's message. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
