package query

import "strings"

// renderTemplate substitutes {context} and {query} into tmpl while leaving
// every other literal brace pair untouched, per spec.md §4.6 step 5: escape
// every '{'/'}' by doubling, un-escape only the two recognized placeholders
// back to single-brace form, substitute their values, then collapse the
// remaining doubled braces back to single literals. A template referencing
// any other placeholder (e.g. "{autor}") is not an error — it round-trips as
// literal text, matching the original implementation's
// double-escape-then-selectively-unescape behavior, which never rejects a
// template no matter what it contains.
func renderTemplate(tmpl, contextText, query string) string {
	escaped := strings.NewReplacer("{", "{{", "}", "}}").Replace(tmpl)
	escaped = strings.ReplaceAll(escaped, "{{context}}", "{context}")
	escaped = strings.ReplaceAll(escaped, "{{query}}", "{query}")

	escaped = strings.ReplaceAll(escaped, "{context}", contextText)
	escaped = strings.ReplaceAll(escaped, "{query}", query)

	escaped = strings.ReplaceAll(escaped, "{{", "{")
	escaped = strings.ReplaceAll(escaped, "}}", "}")
	return escaped
}
