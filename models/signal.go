package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is one of the six PESTEL driver buckets.
type Category string

const (
	Political     Category = "Political"
	Economic      Category = "Economic"
	Social        Category = "Social"
	Technological Category = "Technological"
	Environmental Category = "Environmental"
	Legal         Category = "Legal"
)

// Categories lists the PESTEL buckets in display order.
var Categories = []Category{Political, Economic, Social, Technological, Environmental, Legal}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Score bounds shared by impact, uncertainty and probability.
const (
	MinScore = 1
	MaxScore = 10
)

type SourceCitation struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// UnmarshalJSON also accepts a bare string, read as the citation text.
func (c *SourceCitation) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = SourceCitation{Text: text}
		return nil
	}
	type plain SourceCitation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = SourceCitation(p)
	return nil
}

// Signal is one weak signal. After normalization it carries exactly one source
// and three scores in [MinScore, MaxScore].
type Signal struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title" validate:"required"`
	Description          string           `json:"description" validate:"required"`
	DriverCategory       Category         `json:"driverCategory" validate:"required,pestel"`
	Evidence             string           `json:"evidence"`
	CaseStudy            string           `json:"caseStudy"`
	RelevanceNote        string           `json:"relevanceNote"`
	Source               string           `json:"source" validate:"required"`
	SourceURL            string           `json:"sourceUrl,omitempty"`
	Sources              []SourceCitation `json:"sources,omitempty" validate:"max=1"`
	Impact               int              `json:"impact" validate:"min=1,max=10"`
	Uncertainty          int              `json:"uncertainty" validate:"min=1,max=10"`
	Probability          int              `json:"probability" validate:"min=1,max=10"`
	ImpactRationale      string           `json:"impactRationale,omitempty"`
	UncertaintyRationale string           `json:"uncertaintyRationale,omitempty"`
	ProbabilityRationale string           `json:"probabilityRationale,omitempty"`
}

// SignalID builds the per-set identifier used by both synthesis and normalization.
func SignalID(generatedAt time.Time, idx int) string {
	return fmt.Sprintf("signal-%d-%d", generatedAt.UnixMilli(), idx)
}

// SearchParams is one analyst query.
type SearchParams struct {
	Domain          string   `json:"domain" binding:"required"`
	Geography       string   `json:"geography"`
	Timeline        string   `json:"timeline"`
	DetailedContext string   `json:"detailedContext,omitempty"`
	Documents       []string `json:"documents,omitempty"`
}

// DefaultTimeline returns "{year}-{year+6}" for the given instant.
func DefaultTimeline(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.Year(), now.Year()+6)
}

// WithDefaults fills an empty timeline. Geography is left untouched so stored
// titles keep the raw input.
func (p SearchParams) WithDefaults(now time.Time) SearchParams {
	if strings.TrimSpace(p.Timeline) == "" {
		p.Timeline = DefaultTimeline(now)
	}
	return p
}

// DisplayGeography is the geography shown to users.
func (p SearchParams) DisplayGeography() string {
	if strings.TrimSpace(p.Geography) == "" {
		return "Global"
	}
	return p.Geography
}

// DefaultTitle is the title a freshly archived scan receives.
func (p SearchParams) DefaultTitle() string {
	return fmt.Sprintf("%s - %s (%s)", p.Domain, p.Geography, p.Timeline)
}

// Scan is one archived search run.
type Scan struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Domain          string    `json:"domain"`
	Geography       string    `json:"geography"`
	Timeline        string    `json:"timeline"`
	DetailedContext string    `json:"detailed_context,omitempty"`
	Signals         []Signal  `json:"signals"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
