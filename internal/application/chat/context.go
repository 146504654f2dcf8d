// Package chat implements the follow-up conversation surface: the
// deterministic grounding-context builder, the guardrail filter applied to
// every outgoing user message, and the disclaimer enforcement applied to
// every assistant reply.
package chat

import (
	"fmt"
	"strings"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

// BuildChatContext renders the analysis into the grounding context injected
// ahead of every chat turn. It is a pure function: identical analyses yield
// byte-identical strings, so context regeneration is testable via string
// equality.
func BuildChatContext(analysis *offense.ComprehensiveAnalysis) string {
	if analysis == nil {
		return "No background check analysis has been run yet."
	}

	var sb strings.Builder
	sb.WriteString("BACKGROUND CHECK ANALYSIS SUMMARY\n")
	fmt.Fprintf(&sb, "Total offense codes analyzed: %d\n", analysis.Summary.TotalCodes)
	fmt.Fprintf(&sb, "Mandatory disqualifiers: %d\n", analysis.Summary.MandatoryDisqualifiers)
	fmt.Fprintf(&sb, "Offenses with an exemption path: %d\n", analysis.Summary.HasExemptionPath)
	fmt.Fprintf(&sb, "Non-disqualifying offenses: %d\n", analysis.Summary.NonDisqualifying)
	fmt.Fprintf(&sb, "Overall status: %s\n", analysis.Summary.OverallStatus)

	if len(analysis.Codes) > 0 {
		sb.WriteString("\nPER-CODE FINDINGS\n")
	}
	for i, record := range analysis.Codes {
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, record.Code, record.Description)
		fmt.Fprintf(&sb, "   Category: %s\n", record.Category)
		fmt.Fprintf(&sb, "   K-12 impact: %s\n", record.K12Impact)
		if len(record.Citations) > 0 {
			fmt.Fprintf(&sb, "   Citations: %s\n", strings.Join(record.Citations, "; "))
		}
	}

	return sb.String()
}

// systemPrompt is the instruction block placed ahead of the grounding
// context on every turn.
const systemPromptHeader = `You are a K-12 background check assistant for school HR staff.
Answer questions strictly about the analysis below. Do not provide legal
advice; always defer final judgment to legal counsel. Never request,
repeat, or speculate about applicant personal information.

`

func buildSystemPrompt(analysis *offense.ComprehensiveAnalysis) string {
	return systemPromptHeader + BuildChatContext(analysis)
}
