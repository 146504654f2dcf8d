// Package reference provides implementations of offense.ReferenceStore over
// the static legal reference tables (penal-code descriptions, the violent
// and serious felony lists, and the NCIC code table).
//
// The default implementation compiles the tables into the binary via
// go:embed, giving O(1) in-memory probes with no external dependency. A
// postgres-backed variant lives in internal/infrastructure/database/postgres
// for deployments that manage the tables centrally.
package reference

import (
	"context"
	"embed"
	"encoding/json"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

//go:embed data/*.json
var dataFS embed.FS

// EmbeddedStore serves all four reference tables from compiled-in JSON.
// It is immutable after construction and safe for concurrent use.
type EmbeddedStore struct {
	descriptions map[string]*offense.CodeDescription
	violent      map[string]*offense.FelonyListing
	serious      map[string]*offense.FelonyListing
	ncic         map[string]*offense.NCICListing
}

// NewEmbeddedStore loads and indexes the embedded tables.
func NewEmbeddedStore() (*EmbeddedStore, error) {
	s := &EmbeddedStore{
		descriptions: make(map[string]*offense.CodeDescription),
		violent:      make(map[string]*offense.FelonyListing),
		serious:      make(map[string]*offense.FelonyListing),
		ncic:         make(map[string]*offense.NCICListing),
	}

	var descriptions []*offense.CodeDescription
	if err := loadTable("data/penal_codes.json", &descriptions); err != nil {
		return nil, err
	}
	for _, d := range descriptions {
		s.descriptions[d.Number] = d
	}

	var violent []*offense.FelonyListing
	if err := loadTable("data/violent_felonies.json", &violent); err != nil {
		return nil, err
	}
	for _, f := range violent {
		s.violent[f.Number] = f
	}

	var serious []*offense.FelonyListing
	if err := loadTable("data/serious_felonies.json", &serious); err != nil {
		return nil, err
	}
	for _, f := range serious {
		s.serious[f.Number] = f
	}

	var ncic []*offense.NCICListing
	if err := loadTable("data/ncic_codes.json", &ncic); err != nil {
		return nil, err
	}
	for _, n := range ncic {
		s.ncic[n.Code] = n
	}

	return s, nil
}

func loadTable(path string, dest interface{}) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "failed to read embedded table "+path)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "failed to parse embedded table "+path)
	}
	return nil
}

// Description probes the general description table; (nil, nil) on miss.
func (s *EmbeddedStore) Description(_ context.Context, number string) (*offense.CodeDescription, error) {
	return s.descriptions[number], nil
}

// ViolentFelony probes the violent-felony list; (nil, nil) on miss.
func (s *EmbeddedStore) ViolentFelony(_ context.Context, number string) (*offense.FelonyListing, error) {
	return s.violent[number], nil
}

// SeriousFelony probes the serious-felony list; (nil, nil) on miss.
func (s *EmbeddedStore) SeriousFelony(_ context.Context, number string) (*offense.FelonyListing, error) {
	return s.serious[number], nil
}

// NCIC probes the NCIC table; (nil, nil) on miss.
func (s *EmbeddedStore) NCIC(_ context.Context, code string) (*offense.NCICListing, error) {
	return s.ncic[code], nil
}
