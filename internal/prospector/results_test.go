package prospector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/pkg/models"
)

func TestResultStore_ReplaceIsWholesale(t *testing.T) {
	s := prospector.NewResultStore()

	s.Replace(make([]models.ResultRecord, 5))
	require.Equal(t, 5, s.Len())

	s.Replace(make([]models.ResultRecord, 2))
	assert.Equal(t, 2, s.Len())

	s.Replace(nil)
	assert.Equal(t, 0, s.Len())
}

func TestResultStore_ReplaceCopiesInput(t *testing.T) {
	s := prospector.NewResultStore()
	in := []models.ResultRecord{{Name: str("Acme")}}
	s.Replace(in)

	// Mutating the caller's slice after Replace must not leak into the store.
	in[0].Name = str("Changed")
	got := s.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", models.FieldOrEmpty(got[0].Name))
}

func TestResultStore_SnapshotIsACopy(t *testing.T) {
	s := prospector.NewResultStore()
	s.Replace([]models.ResultRecord{{Name: str("Acme")}})

	first := s.Snapshot()
	first[0].Name = str("Mutated")

	second := s.Snapshot()
	assert.Equal(t, "Acme", models.FieldOrEmpty(second[0].Name))
}
