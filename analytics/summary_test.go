package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizon-scanner/models"
)

func sig(id string, cat models.Category, impact, uncertainty, probability int) models.Signal {
	return models.Signal{ID: id, Title: id, DriverCategory: cat, Impact: impact, Uncertainty: uncertainty, Probability: probability}
}

func TestSummarize(t *testing.T) {
	signals := []models.Signal{
		sig("a", models.Technological, 9, 8, 5),
		sig("b", models.Technological, 8, 7, 6),
		sig("c", models.Economic, 7, 9, 7),
		sig("d", models.Legal, 10, 10, 4),
		sig("e", models.Technological, 6, 2, 9),
	}

	got := Summarize(signals)
	assert.Equal(t, 5, got.Total)

	require.Len(t, got.Categories, 6)
	for i, c := range models.Categories {
		assert.Equal(t, c, got.Categories[i].Category)
	}
	tech := got.Categories[3]
	assert.Equal(t, 3, tech.Count)
	assert.InDelta(t, 7.7, tech.AvgImpact, 1e-9)
	assert.Equal(t, 0, got.Categories[0].Count)
	assert.Zero(t, got.Categories[0].AvgImpact)

	require.Len(t, got.Critical, 2)
	assert.Equal(t, "a", got.Critical[0].ID)
	assert.Equal(t, "d", got.Critical[1].ID)

	assert.InDelta(t, 8.0, got.AvgImpact, 1e-9)
	assert.InDelta(t, 7.2, got.AvgUncertainty, 1e-9)
	assert.InDelta(t, 6.2, got.AvgProbability, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Zero(t, got.Total)
	assert.Len(t, got.Categories, 6)
	assert.NotNil(t, got.Critical)
	assert.Empty(t, got.Critical)
}

func TestIsCritical_StrictBoundary(t *testing.T) {
	assert.False(t, IsCritical(sig("x", models.Social, 7, 10, 1)))
	assert.False(t, IsCritical(sig("x", models.Social, 10, 7, 1)))
	assert.True(t, IsCritical(sig("x", models.Social, 8, 8, 1)))
}
