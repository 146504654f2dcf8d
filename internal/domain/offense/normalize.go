package offense

import (
	"regexp"
	"strings"
)

// NormalizedCode is the canonical parse of a raw offense-code string.
// It is derived deterministically from the input, is immutable, and has no
// identity beyond its value.
type NormalizedCode struct {
	RawInput    string      `json:"raw_input"`
	Number      string      `json:"number"`
	Subdivision string      `json:"subdivision,omitempty"`
	StatuteType StatuteType `json:"statute_type"`
}

var (
	ncicRe = regexp.MustCompile(`^\d{4}$`)

	// Optional statute token before or after the number (not both), number
	// with dotted sections, and any run of parenthesized subdivisions
	// attached to the number.
	codeRe = regexp.MustCompile(`(?i)^(?:(PC|HS|VC|BP|WI|FC)\.?\s*)?(\d+(?:\.\d+)*)\s*((?:\([a-z0-9]+\)\s*)*)\s*(?:(PC|HS|VC|BP|WI|FC)\.?)?$`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize parses a free-form code string into a NormalizedCode. It never
// fails: input that matches no known shape comes back with
// StatuteType=UNKNOWN and the cleaned string passed through unchanged.
//
// Rules:
//   - Exactly 4 digits → NCIC.
//   - [PREFIX]? NUMBER[.SECTION]*(SUBDIV)* [SUFFIX]? with prefix/suffix in
//     {PC,HS,VC,BP,WI,FC}; either may appear, not both. "484 PC" and
//     "PC 484" normalize identically.
//   - A bare number without statute letters defaults to PC.
//   - Statute letters are case-insensitive; subdivisions such as
//     "667.5(c)(1)" are retained verbatim (lowercased) as one suffix.
func Normalize(raw string) NormalizedCode {
	cleaned := spaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")

	if ncicRe.MatchString(cleaned) {
		return NormalizedCode{
			RawInput:    raw,
			Number:      cleaned,
			StatuteType: StatuteNCIC,
		}
	}

	m := codeRe.FindStringSubmatch(cleaned)
	if m != nil {
		prefix, number, subdiv, suffix := m[1], m[2], m[3], m[4]

		// A statute token on both sides is ambiguous; pass through.
		if prefix != "" && suffix != "" {
			return NormalizedCode{RawInput: raw, Number: cleaned, StatuteType: StatuteUnknown}
		}

		token := prefix
		if token == "" {
			token = suffix
		}

		st := StatutePC // bare number defaults to Penal Code
		if token != "" {
			st = StatuteType(strings.ToUpper(token))
		}

		return NormalizedCode{
			RawInput:    raw,
			Number:      number,
			Subdivision: strings.ToLower(spaceRe.ReplaceAllString(subdiv, "")),
			StatuteType: st,
		}
	}

	return NormalizedCode{RawInput: raw, Number: cleaned, StatuteType: StatuteUnknown}
}

// Display returns the canonical display form: "NUMBER[SUBDIV] TYPE" for
// statute codes (e.g. "484 PC", "667.5(c) PC"), the bare number for NCIC
// codes, and the cleaned input for unknown shapes.
func (n NormalizedCode) Display() string {
	switch n.StatuteType {
	case StatuteNCIC:
		return n.Number
	case StatuteUnknown:
		return n.Number
	default:
		return n.Number + n.Subdivision + " " + string(n.StatuteType)
	}
}
