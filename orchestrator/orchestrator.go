// Package orchestrator runs one search submission: live query when a
// credential is configured, simulation otherwise or on failure, then archive.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"horizon-scanner/livequery"
	"horizon-scanner/metrics"
	"horizon-scanner/models"
	"horizon-scanner/normalize"
	"horizon-scanner/settings"
)

type State string

const (
	Idle            State = "idle"
	Searching       State = "searching"
	Success         State = "success"
	FallbackSuccess State = "fallback_success"
	Failed          State = "failed"
)

type Mode string

const (
	ModeLive       Mode = "live"
	ModeSimulation Mode = "simulation"
)

// User-facing notices.
const (
	NoticeAPIFallback       = "API request failed. Using simulation mode."
	NoticeMalformedFallback = "API response could not be parsed. Using simulation mode."
	NoticeFailed            = "An error occurred while scanning for signals."
)

var (
	ErrEmptyDomain  = errors.New("domain must not be empty")
	ErrSearchFailed = errors.New("search failed")
)

type LiveSearcher interface {
	Search(ctx context.Context, params models.SearchParams, credential string, prompts livequery.Prompts) ([]models.Signal, error)
}

type Synthesizer interface {
	Generate(params models.SearchParams) ([]models.Signal, error)
}

type Archive interface {
	Save(ctx context.Context, params models.SearchParams, signals []models.Signal) *models.Scan
	Get(ctx context.Context, id string) *models.Scan
}

type SettingsSource interface {
	Get() settings.Settings
}

// Result is what a search hands to the presentation layer. Signals and the
// archived Scan come from the same synthesis call.
type Result struct {
	State   State               `json:"state"`
	Mode    Mode                `json:"mode"`
	Notice  string              `json:"notice,omitempty"`
	Params  models.SearchParams `json:"params"`
	Signals []models.Signal     `json:"signals"`
	Scan    *models.Scan        `json:"scan,omitempty"`
}

type Deps struct {
	Live     LiveSearcher
	Synth    Synthesizer
	Archive  Archive
	Settings SettingsSource
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type Orchestrator struct {
	live     LiveSearcher
	synth    Synthesizer
	archive  Archive
	settings SettingsSource
	logger   *zap.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

func New(d Deps) *Orchestrator {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Orchestrator{
		live:     d.Live,
		synth:    d.Synth,
		archive:  d.Archive,
		settings: d.Settings,
		logger:   d.Logger,
		metrics:  d.Metrics,
		tracer:   otel.Tracer("horizon-scanner/orchestrator"),
		now:      d.Now,
	}
}

// Mode reports which path the next search takes.
func (o *Orchestrator) Mode() Mode {
	if o.settings.Get().HasCredential() {
		return ModeLive
	}
	return ModeSimulation
}

// Search runs one submission. A blank domain is rejected with ErrEmptyDomain
// and the state stays Idle. A Failed result is returned together with an
// error wrapping ErrSearchFailed and carries no signals.
func (o *Orchestrator) Search(ctx context.Context, params models.SearchParams) (Result, error) {
	if strings.TrimSpace(params.Domain) == "" {
		return Result{State: Idle, Params: params}, ErrEmptyDomain
	}

	started := o.now()
	params = params.WithDefaults(started)
	current := o.settings.Get()

	ctx, span := o.tracer.Start(ctx, "scan.search", trace.WithAttributes(
		attribute.String("scan.domain", params.Domain),
		attribute.String("scan.geography", params.Geography),
		attribute.Bool("scan.api_key_present", current.HasCredential()),
	))
	defer span.End()

	res := Result{State: Searching, Params: params}
	o.logger.Info("Search started",
		zap.String("domain", params.Domain),
		zap.String("geography", params.DisplayGeography()),
		zap.String("timeline", params.Timeline),
		zap.Bool("api_key_present", current.HasCredential()))

	signals, err := o.run(ctx, params, current, &res)
	if err != nil {
		res.State = Failed
		res.Notice = NoticeFailed
		res.Signals = nil
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("Search failed", zap.String("domain", params.Domain), zap.Error(err))
		o.metrics.ObserveSearch(string(res.Mode), string(res.State), o.now().Sub(started), 0)
		return res, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	res.Signals = signals

	res.Scan = o.archive.Save(ctx, params, signals)
	if res.Scan == nil {
		o.logger.Warn("Scan was not archived; result is still returned", zap.String("domain", params.Domain))
	}

	span.SetAttributes(
		attribute.String("scan.mode", string(res.Mode)),
		attribute.String("scan.state", string(res.State)),
		attribute.Int("scan.signals", len(signals)),
	)
	o.metrics.ObserveSearch(string(res.Mode), string(res.State), o.now().Sub(started), len(signals))
	o.logger.Info("Search finished",
		zap.String("state", string(res.State)),
		zap.String("mode", string(res.Mode)),
		zap.Int("signals", len(signals)))
	return res, nil
}

// run picks the synthesis path and sets res.State, res.Mode and res.Notice.
func (o *Orchestrator) run(ctx context.Context, params models.SearchParams, current settings.Settings, res *Result) ([]models.Signal, error) {
	if !current.HasCredential() {
		res.Mode = ModeSimulation
		signals, err := o.synth.Generate(params)
		if err != nil {
			return nil, fmt.Errorf("simulation: %w", err)
		}
		res.State = Success
		return signals, nil
	}

	res.Mode = ModeLive
	signals, err := o.live.Search(ctx, params, current.APIKey, current.Prompts())
	if err == nil {
		res.State = Success
		return signals, nil
	}

	notice, kind, ok := fallbackNotice(err)
	if !ok {
		return nil, fmt.Errorf("live query: %w", err)
	}
	o.metrics.LiveQueryError(kind)
	o.logger.Warn("Live query failed, falling back to simulation", zap.String("kind", kind), zap.Error(err))

	res.Mode = ModeSimulation
	res.Notice = notice
	signals, err = o.synth.Generate(params)
	if err != nil {
		return nil, fmt.Errorf("simulation fallback: %w", err)
	}
	res.State = FallbackSuccess
	return signals, nil
}

// fallbackNotice maps the errors that route to simulation to their notice and
// metric label.
func fallbackNotice(err error) (notice, kind string, ok bool) {
	var (
		authErr   *livequery.AuthError
		rateErr   *livequery.RateLimitError
		reqErr    *livequery.RequestError
		malformed *normalize.MalformedResponseError
	)
	switch {
	case errors.As(err, &authErr):
		return NoticeAPIFallback, "auth", true
	case errors.As(err, &rateErr):
		return NoticeAPIFallback, "rate_limit", true
	case errors.As(err, &reqErr):
		return NoticeAPIFallback, "request", true
	case errors.As(err, &malformed):
		return NoticeMalformedFallback, "malformed", true
	}
	return "", "", false
}

// Replay returns an archived scan for display without running synthesis.
func (o *Orchestrator) Replay(ctx context.Context, id string) *models.Scan {
	return o.archive.Get(ctx, id)
}
