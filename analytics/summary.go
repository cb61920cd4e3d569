// Package analytics derives the PESTEL distribution and the critical
// watchlist from a signal set.
package analytics

import (
	"math"

	"horizon-scanner/models"
)

// CriticalThreshold is exceeded (strictly) by both impact and uncertainty of a
// critical signal.
const CriticalThreshold = 7

type CategoryStats struct {
	Category  models.Category `json:"category"`
	Count     int             `json:"count"`
	AvgImpact float64         `json:"avgImpact"`
}

type MatrixPoint struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Category    models.Category `json:"category"`
	Impact      int             `json:"impact"`
	Uncertainty int             `json:"uncertainty"`
}

type Summary struct {
	Total          int             `json:"total"`
	Categories     []CategoryStats `json:"categories"`
	Critical       []MatrixPoint   `json:"critical"`
	AvgImpact      float64         `json:"avgImpact"`
	AvgUncertainty float64         `json:"avgUncertainty"`
	AvgProbability float64         `json:"avgProbability"`
}

// IsCritical reports whether s belongs on the critical watchlist.
func IsCritical(s models.Signal) bool {
	return s.Impact > CriticalThreshold && s.Uncertainty > CriticalThreshold
}

func Summarize(signals []models.Signal) Summary {
	sum := Summary{
		Total:      len(signals),
		Categories: make([]CategoryStats, len(models.Categories)),
		Critical:   []MatrixPoint{},
	}
	index := make(map[models.Category]int, len(models.Categories))
	impactTotals := make([]int, len(models.Categories))
	for i, c := range models.Categories {
		sum.Categories[i].Category = c
		index[c] = i
	}

	var impact, uncertainty, probability int
	for _, s := range signals {
		impact += s.Impact
		uncertainty += s.Uncertainty
		probability += s.Probability
		if i, ok := index[s.DriverCategory]; ok {
			sum.Categories[i].Count++
			impactTotals[i] += s.Impact
		}
		if IsCritical(s) {
			sum.Critical = append(sum.Critical, MatrixPoint{
				ID:          s.ID,
				Title:       s.Title,
				Category:    s.DriverCategory,
				Impact:      s.Impact,
				Uncertainty: s.Uncertainty,
			})
		}
	}

	for i := range sum.Categories {
		if n := sum.Categories[i].Count; n > 0 {
			sum.Categories[i].AvgImpact = round1(float64(impactTotals[i]) / float64(n))
		}
	}
	if n := len(signals); n > 0 {
		sum.AvgImpact = round1(float64(impact) / float64(n))
		sum.AvgUncertainty = round1(float64(uncertainty) / float64(n))
		sum.AvgProbability = round1(float64(probability) / float64(n))
	}
	return sum
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
