package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

// ReferenceStore is the postgres-backed offense.ReferenceStore. Schema lives
// in migrations/; rows mirror the embedded JSON tables so the two sources
// are interchangeable.
type ReferenceStore struct {
	conn *Connection
}

var _ offense.ReferenceStore = (*ReferenceStore)(nil)

func NewReferenceStore(conn *Connection) *ReferenceStore {
	return &ReferenceStore{conn: conn}
}

func (s *ReferenceStore) Description(ctx context.Context, number string) (*offense.CodeDescription, error) {
	const q = `
		SELECT number, statute_type, description, category, felony, k12_impact
		FROM penal_code_descriptions
		WHERE number = $1`

	var d offense.CodeDescription
	var statuteType, impact string
	err := s.conn.pool.QueryRow(ctx, q, number).Scan(
		&d.Number, &statuteType, &d.Description, &d.Category, &d.Felony, &impact,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "description lookup failed")
	}
	d.StatuteType = offense.StatuteType(statuteType)
	d.K12Impact = offense.DisqualificationStatus(impact).Normalize()
	return &d, nil
}

func (s *ReferenceStore) ViolentFelony(ctx context.Context, number string) (*offense.FelonyListing, error) {
	return s.felony(ctx, number, `
		SELECT number, description, FALSE
		FROM violent_felonies
		WHERE number = $1`)
}

func (s *ReferenceStore) SeriousFelony(ctx context.Context, number string) (*offense.FelonyListing, error) {
	return s.felony(ctx, number, `
		SELECT number, description, also_violent
		FROM serious_felonies
		WHERE number = $1`)
}

func (s *ReferenceStore) felony(ctx context.Context, number, query string) (*offense.FelonyListing, error) {
	var f offense.FelonyListing
	err := s.conn.pool.QueryRow(ctx, query, number).Scan(&f.Number, &f.Description, &f.AlsoViolent)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "felony list lookup failed")
	}
	return &f, nil
}

func (s *ReferenceStore) NCIC(ctx context.Context, code string) (*offense.NCICListing, error) {
	const q = `
		SELECT code, offense, category, COALESCE(statute_ref, '')
		FROM ncic_codes
		WHERE code = $1`

	var n offense.NCICListing
	err := s.conn.pool.QueryRow(ctx, q, code).Scan(&n.Code, &n.Offense, &n.Category, &n.StatuteRef)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "ncic lookup failed")
	}
	return &n, nil
}
