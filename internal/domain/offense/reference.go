package offense

import "context"

// CodeDescription is one row of the general penal-code description table.
type CodeDescription struct {
	Number      string      `json:"number"`
	StatuteType StatuteType `json:"statute_type"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Felony      bool        `json:"felony"`
	K12Impact   DisqualificationStatus `json:"k12_impact"`
}

// FelonyListing is one row of the violent-felony or serious-felony list
// (Penal Code 667.5(c) and 1192.7(c) respectively).
type FelonyListing struct {
	Number      string `json:"number"`
	Description string `json:"description"`

	// AlsoViolent marks serious-felony rows that additionally appear on the
	// violent list; such rows force mandatory disqualification.
	AlsoViolent bool `json:"also_violent,omitempty"`
}

// NCICListing maps a 4-digit NCIC offense code to its description and,
// where known, a California statute reference.
type NCICListing struct {
	Code        string `json:"code"`
	Offense     string `json:"offense"`
	Category    string `json:"category"`
	StatuteRef  string `json:"statute_ref,omitempty"`
}

// ReferenceStore is the read-only lookup contract over the static legal
// reference tables. Implementations must offer O(1) access by normalized
// code number and be safe for concurrent use after load.
//
// A miss is not an error: methods return (nil, nil) when the number is not
// in the table. Errors are reserved for store failures (e.g. an unreachable
// database backing the tables).
type ReferenceStore interface {
	// Description probes the general description table.
	Description(ctx context.Context, number string) (*CodeDescription, error)

	// ViolentFelony probes the violent-felony list.
	ViolentFelony(ctx context.Context, number string) (*FelonyListing, error)

	// SeriousFelony probes the serious-felony list.
	SeriousFelony(ctx context.Context, number string) (*FelonyListing, error)

	// NCIC probes the NCIC code table.
	NCIC(ctx context.Context, code string) (*NCICListing, error)
}
