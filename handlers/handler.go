// Package handlers exposes scans, history and settings over HTTP.
package handlers

import (
	"context"

	"go.uber.org/zap"

	"horizon-scanner/models"
	"horizon-scanner/orchestrator"
	"horizon-scanner/settings"
)

type Searcher interface {
	Search(ctx context.Context, params models.SearchParams) (orchestrator.Result, error)
	Replay(ctx context.Context, id string) *models.Scan
	Mode() orchestrator.Mode
}

type ScanStore interface {
	List(ctx context.Context) []models.Scan
	Rename(ctx context.Context, id, title string) bool
	Delete(ctx context.Context, id string) bool
}

type SettingsStore interface {
	Get() settings.Settings
	Update(p settings.Patch) (settings.Settings, error)
	ResetPrompts() (settings.Settings, error)
}

type KeyTester interface {
	TestCredential(ctx context.Context, credential string) error
}

type Handler struct {
	search   Searcher
	scans    ScanStore
	settings SettingsStore
	keys     KeyTester
	logger   *zap.Logger
}

func New(search Searcher, scans ScanStore, store SettingsStore, keys KeyTester, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		search:   search,
		scans:    scans,
		settings: store,
		keys:     keys,
		logger:   logger,
	}
}
