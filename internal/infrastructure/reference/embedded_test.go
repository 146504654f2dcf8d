package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

func TestNewEmbeddedStore_LoadsAllTables(t *testing.T) {
	s, err := NewEmbeddedStore()
	require.NoError(t, err)

	ctx := context.Background()

	desc, err := s.Description(ctx, "484")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "Petty theft", desc.Description)
	assert.Equal(t, offense.StatusNonDisqualifying, desc.K12Impact)

	violent, err := s.ViolentFelony(ctx, "211")
	require.NoError(t, err)
	require.NotNil(t, violent)
	assert.Equal(t, "Robbery", violent.Description)

	serious, err := s.SeriousFelony(ctx, "245")
	require.NoError(t, err)
	require.NotNil(t, serious)
	assert.False(t, serious.AlsoViolent)

	ncic, err := s.NCIC(ctx, "1313")
	require.NoError(t, err)
	require.NotNil(t, ncic)
	assert.Equal(t, "245 PC", ncic.StatuteRef)
}

func TestEmbeddedStore_MissIsNotAnError(t *testing.T) {
	s, err := NewEmbeddedStore()
	require.NoError(t, err)

	ctx := context.Background()

	desc, err := s.Description(ctx, "99999")
	assert.NoError(t, err)
	assert.Nil(t, desc)

	violent, err := s.ViolentFelony(ctx, "484")
	assert.NoError(t, err)
	assert.Nil(t, violent)

	ncic, err := s.NCIC(ctx, "0000")
	assert.NoError(t, err)
	assert.Nil(t, ncic)
}

func TestEmbeddedStore_SeriousListMarksViolentOverlap(t *testing.T) {
	s, err := NewEmbeddedStore()
	require.NoError(t, err)

	serious, err := s.SeriousFelony(context.Background(), "211")
	require.NoError(t, err)
	require.NotNil(t, serious)
	assert.True(t, serious.AlsoViolent)
}
