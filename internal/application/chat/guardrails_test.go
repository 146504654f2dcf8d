package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOffTopic(t *testing.T) {
	g := Guardrails{}

	assert.True(t, g.IsOffTopic("What's the weather today?"))
	assert.True(t, g.IsOffTopic("Tell me a JOKE"))
	assert.False(t, g.IsOffTopic("Is 211 PC a mandatory disqualifier?"))
	assert.False(t, g.IsOffTopic("What exemption options exist for this offense?"))
}

func TestContainsPII(t *testing.T) {
	g := Guardrails{}

	assert.True(t, g.ContainsPII("The SSN is 123-45-6789"))
	assert.True(t, g.ContainsPII("born 01/15/1985"))
	assert.True(t, g.ContainsPII("this is about John Smith"))
	assert.False(t, g.ContainsPII("what does 484 PC mean for hiring?"))
}

func TestSanitize_RemovesSSNAndName(t *testing.T) {
	g := Guardrails{}

	sanitized, warnings := g.Sanitize("SSN 123-45-6789 for John Smith")

	assert.NotContains(t, sanitized, "123-45-6789")
	assert.NotContains(t, sanitized, "John Smith")
	assert.Contains(t, sanitized, redactedToken)
	assert.NotEmpty(t, warnings)
	assert.Len(t, warnings, 2) // one per pattern class
}

func TestSanitize_CleanInputNoWarnings(t *testing.T) {
	g := Guardrails{}

	sanitized, warnings := g.Sanitize("codes 484 and 211 from the report")

	assert.Equal(t, "codes 484 and 211 from the report", sanitized)
	assert.Empty(t, warnings)
}

func TestEnforceDisclaimer_AppendsToLongUndisclaimedReply(t *testing.T) {
	reply := strings.Repeat("This offense bars employment. ", 20)

	finished, appended := EnforceDisclaimer(reply, 200)

	assert.True(t, appended)
	assert.Contains(t, finished, "does not constitute legal advice")
}

func TestEnforceDisclaimer_ShortReplyUntouched(t *testing.T) {
	finished, appended := EnforceDisclaimer("Yes.", 200)

	assert.False(t, appended)
	assert.Equal(t, "Yes.", finished)
}

func TestEnforceDisclaimer_ExistingPhraseNotDuplicated(t *testing.T) {
	reply := strings.Repeat("Analysis text. ", 20) + "This is not legal advice."

	finished, appended := EnforceDisclaimer(reply, 200)

	assert.False(t, appended)
	assert.Equal(t, reply, finished)
}
