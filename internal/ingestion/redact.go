package ingestion

import "regexp"

// Replacement tokens for redacted contact details.
const (
	RedactedEmail = "[REDACTED_EMAIL]"
	RedactedPhone = "[REDACTED_PHONE]"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// A separator between the groups is required so years and ids survive.
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)
)

// RedactPII replaces email addresses and phone numbers in text.
func RedactPII(text string) string {
	text = emailRe.ReplaceAllString(text, RedactedEmail)
	return phoneRe.ReplaceAllString(text, RedactedPhone)
}
