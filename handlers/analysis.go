package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"horizon-scanner/analytics"
	"horizon-scanner/models"
	"horizon-scanner/orchestrator"
)

type SearchResponse struct {
	orchestrator.Result
	Summary analytics.Summary `json:"summary"`
}

// Search runs one scan. The response carries the signals, the archived scan
// (absent when archiving failed) and the chart numbers for the set.
func (h *Handler) Search(c *gin.Context) {
	var params models.SearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.search.Search(c.Request.Context(), params)
	switch {
	case errors.Is(err, orchestrator.ErrEmptyDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a domain to scan"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"state":  res.State,
			"notice": res.Notice,
			"error":  res.Notice,
		})
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Result:  res,
		Summary: analytics.Summarize(res.Signals),
	})
}

// Mode reports whether the next scan goes to the live API.
func (h *Handler) Mode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": h.search.Mode()})
}
