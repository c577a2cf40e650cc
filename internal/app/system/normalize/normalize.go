// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared and
// stored in this canonical form everywhere.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth-method value ("password", "google").
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
