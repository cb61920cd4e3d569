package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"horizon-scanner/livequery"
	"horizon-scanner/settings"
)

type SettingsView struct {
	APIKey             string `json:"apiKey"`
	HasAPIKey          bool   `json:"hasApiKey"`
	SystemPrompt       string `json:"systemPrompt"`
	PestelPrompt       string `json:"pestelPrompt"`
	SignalDefinition   string `json:"signalDefinition"`
	SourceDiversity    string `json:"sourceDiversity"`
	MetricsMethodology string `json:"metricsMethodology"`
}

func viewOf(s settings.Settings) SettingsView {
	return SettingsView{
		APIKey:             MaskKey(s.APIKey),
		HasAPIKey:          s.HasCredential(),
		SystemPrompt:       s.SystemPrompt,
		PestelPrompt:       s.PestelPrompt,
		SignalDefinition:   s.SignalDefinition,
		SourceDiversity:    s.SourceDiversity,
		MetricsMethodology: s.MetricsMethodology,
	}
}

// MaskKey keeps the last four characters of a credential.
func MaskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return strings.Repeat("*", len(key))
	default:
		return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.settings.Get()))
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.settings.Update(patch)
	if err != nil {
		h.logger.Error("Settings update not persisted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

func (h *Handler) ResetSettings(c *gin.Context) {
	updated, err := h.settings.ResetPrompts()
	if err != nil {
		h.logger.Error("Settings reset not persisted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

type TestKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// TestKey sends a minimal request with the given key, or the stored one when
// the body carries none.
func (h *Handler) TestKey(c *gin.Context) {
	var req TestKeyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = h.settings.Get().APIKey
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No API key configured"})
		return
	}

	err := h.keys.TestCredential(c.Request.Context(), key)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"valid": true})
		return
	}

	h.logger.Info("API key test failed", zap.String("kind", errorKind(err)), zap.Error(err))
	c.JSON(http.StatusOK, gin.H{"valid": false, "kind": errorKind(err), "error": err.Error()})
}

func errorKind(err error) string {
	var (
		authErr *livequery.AuthError
		rateErr *livequery.RateLimitError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	default:
		return "request"
	}
}
