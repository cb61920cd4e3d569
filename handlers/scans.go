package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"horizon-scanner/analytics"
	"horizon-scanner/models"
)

type ScanSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	Geography   string `json:"geography"`
	Timeline    string `json:"timeline"`
	SignalCount int    `json:"signal_count"`
	CreatedAt   string `json:"created_at"`
}

type ReplayResponse struct {
	Scan    *models.Scan      `json:"scan"`
	Summary analytics.Summary `json:"summary"`
}

type RenameRequest struct {
	Title string `json:"title"`
}

// ListScans returns archived scans newest first. Signals are omitted; fetch a
// single scan to replay it.
func (h *Handler) ListScans(c *gin.Context) {
	scans := h.scans.List(c.Request.Context())

	out := make([]ScanSummary, 0, len(scans))
	for _, s := range scans {
		out = append(out, ScanSummary{
			ID:          s.ID,
			Title:       s.Title,
			Domain:      s.Domain,
			Geography:   s.Geography,
			Timeline:    s.Timeline,
			SignalCount: len(s.Signals),
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetScan(c *gin.Context) {
	scan := h.search.Replay(c.Request.Context(), c.Param("id"))
	if scan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}
	c.JSON(http.StatusOK, ReplayResponse{Scan: scan, Summary: analytics.Summarize(scan.Signals)})
}

func (h *Handler) RenameScan(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be empty"})
		return
	}

	if !h.scans.Rename(c.Request.Context(), c.Param("id"), req.Title) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found or not renamed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "title": req.Title})
}

func (h *Handler) DeleteScan(c *gin.Context) {
	if !h.scans.Delete(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found or not deleted"})
		return
	}
	c.Status(http.StatusNoContent)
}
