package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"horizon-scanner/analytics"
	"horizon-scanner/models"
)

type FilterParams struct {
	Category       models.Category `json:"category,omitempty"`
	MinImpact      int             `json:"min_impact,omitempty"`
	MinUncertainty int             `json:"min_uncertainty,omitempty"`
	CriticalOnly   bool            `json:"critical_only,omitempty"`
}

type DashboardData struct {
	ScanID  string            `json:"scan_id"`
	Title   string            `json:"title"`
	Filters FilterParams      `json:"filters"`
	Signals []models.Signal   `json:"signals"`
	Summary analytics.Summary `json:"summary"`
}

// Dashboard replays an archived scan with optional filters applied. The
// summary describes the filtered set.
func (h *Handler) Dashboard(c *gin.Context) {
	filters := FilterParams{
		Category:     models.Category(c.Query("category")),
		CriticalOnly: c.Query("critical") == "true",
	}
	filters.MinImpact, _ = strconv.Atoi(c.DefaultQuery("min_impact", "0"))
	filters.MinUncertainty, _ = strconv.Atoi(c.DefaultQuery("min_uncertainty", "0"))

	if filters.Category != "" && !filters.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	scan := h.search.Replay(c.Request.Context(), c.Param("id"))
	if scan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}

	signals := filterSignals(scan.Signals, filters)
	c.JSON(http.StatusOK, DashboardData{
		ScanID:  scan.ID,
		Title:   scan.Title,
		Filters: filters,
		Signals: signals,
		Summary: analytics.Summarize(signals),
	})
}

func filterSignals(signals []models.Signal, f FilterParams) []models.Signal {
	out := make([]models.Signal, 0, len(signals))
	for _, s := range signals {
		if f.Category != "" && s.DriverCategory != f.Category {
			continue
		}
		if f.MinImpact > 0 && s.Impact < f.MinImpact {
			continue
		}
		if f.MinUncertainty > 0 && s.Uncertainty < f.MinUncertainty {
			continue
		}
		if f.CriticalOnly && !analytics.IsCritical(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
