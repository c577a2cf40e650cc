// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// comments, chat messages, and bios allow basic formatting only.
var ugcPolicy = bluemonday.UGCPolicy()

// plainPolicy strips all markup; used for single-line fields like titles.
var plainPolicy = bluemonday.StrictPolicy()

// Sanitize cleans user-generated rich content (comments, chat, bio),
// keeping basic formatting and dropping scripts and event handlers.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// Plain strips all HTML from a string. Use for titles and names.
func Plain(s string) string {
	return plainPolicy.Sanitize(s)
}
