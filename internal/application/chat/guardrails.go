package chat

import (
	"regexp"
	"strings"
)

// Canned guardrail responses. Returned as normal assistant messages; a
// guardrail trigger is a designed redirect, not an error.
const (
	offTopicRedirect = "I can only help with questions about this background check analysis: " +
		"offense codes, disqualification status, and exemption options. Could you rephrase " +
		"your question in those terms?"

	piiRedirect = "For privacy reasons I can't discuss personal details like names, Social " +
		"Security numbers, or dates of birth. Please ask about the offense codes and their " +
		"K-12 employment impact without identifying information."

	redactedToken = "[REDACTED]"
)

// offTopicKeywords is the fixed deny-list. Matching is case-insensitive
// substring matching; a hit short-circuits before the oracle is called.
var offTopicKeywords = []string{
	"weather",
	"sports",
	"recipe",
	"stock market",
	"movie",
	"music",
	"joke",
	"dating",
	"vacation",
	"horoscope",
}

var (
	ssnRe  = regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)
	dobRe  = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	nameRe = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)
)

// Guardrails applies the pre-send checks to outgoing user messages. Two
// strategies coexist deliberately: chat turns REFUSE on PII (the raw content
// never reaches the oracle), while document-derived input is sanitized with
// redaction placeholders and forwarded together with non-blocking warnings.
type Guardrails struct{}

// IsOffTopic reports whether the message hits the deny-list.
func (Guardrails) IsOffTopic(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range offTopicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ContainsPII reports whether the message matches an SSN-like, DOB-like, or
// capitalized-name-like pattern.
func (Guardrails) ContainsPII(message string) bool {
	return ssnRe.MatchString(message) || dobRe.MatchString(message) || nameRe.MatchString(message)
}

// Sanitize is the redact-and-continue variant: matched spans are replaced
// with a placeholder and the cleaned text is returned along with one warning
// per pattern class that fired. An empty warnings slice means nothing was
// redacted.
func (Guardrails) Sanitize(input string) (string, []string) {
	warnings := []string{}

	if ssnRe.MatchString(input) {
		input = ssnRe.ReplaceAllString(input, redactedToken)
		warnings = append(warnings, "A Social Security number pattern was redacted from the input.")
	}
	if dobRe.MatchString(input) {
		input = dobRe.ReplaceAllString(input, redactedToken)
		warnings = append(warnings, "A date-of-birth pattern was redacted from the input.")
	}
	if nameRe.MatchString(input) {
		input = nameRe.ReplaceAllString(input, redactedToken)
		warnings = append(warnings, "A possible personal name was redacted from the input.")
	}

	return input, warnings
}

// Disclaimer enforcement: long replies that carry none of the known
// disclaimer phrases get the standard footer appended.
const disclaimerFooter = "\n\n---\nThis analysis is informational only and does not constitute " +
	"legal advice. Final employment decisions must be reviewed by qualified legal counsel."

var disclaimerPhrases = []string{
	"not legal advice",
	"does not constitute legal advice",
	"consult legal counsel",
	"consult an attorney",
	"informational only",
}

// EnforceDisclaimer appends the standard footer to reply when it exceeds
// minLength and contains no recognized disclaimer phrase. It reports whether
// the footer was added.
func EnforceDisclaimer(reply string, minLength int) (string, bool) {
	if len(reply) <= minLength {
		return reply, false
	}
	lower := strings.ToLower(reply)
	for _, phrase := range disclaimerPhrases {
		if strings.Contains(lower, phrase) {
			return reply, false
		}
	}
	return reply + disclaimerFooter, true
}
