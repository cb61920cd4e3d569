// Package normalize turns raw model output into validated signal records.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"horizon-scanner/models"
)

// MalformedResponseError reports model output that could not be turned into
// signals. No partial result accompanies it.
type MalformedResponseError struct {
	Reason  string
	Invalid map[int][]models.FieldIssue
	Err     error
}

func (e *MalformedResponseError) Error() string {
	msg := "malformed model response: " + e.Reason
	if len(e.Invalid) > 0 {
		msg += fmt.Sprintf(" (%d invalid records)", len(e.Invalid))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ExtractArray returns the text from the first '[' to the last ']'.
func ExtractArray(raw string) (string, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// CollapseSource keeps the text before the first comma, then before the first
// semicolon, so "McKinsey, BCG" becomes "McKinsey".
func CollapseSource(source string) string {
	if before, _, found := strings.Cut(source, ","); found {
		source = strings.TrimSpace(before)
	}
	if before, _, found := strings.Cut(source, ";"); found {
		source = strings.TrimSpace(before)
	}
	return source
}

// Normalize parses raw into signals using the current time for ids.
func Normalize(raw string) ([]models.Signal, error) {
	return NormalizeAt(raw, time.Now())
}

// NormalizeAt extracts the array payload from raw, collapses every record to
// a single source, assigns ids and validates the result. A record with no
// source string borrows it from its citation, and the kept citation text is
// collapsed the same way as the source.
func NormalizeAt(raw string, generatedAt time.Time) ([]models.Signal, error) {
	span, ok := ExtractArray(raw)
	if !ok {
		return nil, &MalformedResponseError{Reason: "no JSON array found"}
	}

	var records []models.Signal
	if err := json.Unmarshal([]byte(span), &records); err != nil {
		return nil, &MalformedResponseError{Reason: "array is not valid JSON", Err: err}
	}
	if len(records) == 0 {
		return nil, &MalformedResponseError{Reason: "array contains no signals"}
	}

	invalid := make(map[int][]models.FieldIssue)
	for i := range records {
		r := &records[i]
		if len(r.Sources) > 1 {
			r.Sources = r.Sources[:1]
		}
		if strings.TrimSpace(r.Source) == "" && len(r.Sources) == 1 {
			r.Source = r.Sources[0].Text
			if r.SourceURL == "" {
				r.SourceURL = r.Sources[0].URL
			}
		}
		r.Source = CollapseSource(r.Source)
		if len(r.Sources) == 1 {
			r.Sources[0].Text = CollapseSource(r.Sources[0].Text)
		}
		r.ID = models.SignalID(generatedAt, i)

		if issues := models.ValidateSignal(*r); len(issues) > 0 {
			invalid[i] = issues
		}
	}
	if len(invalid) > 0 {
		return nil, &MalformedResponseError{Reason: "records failed validation", Invalid: invalid}
	}
	return records, nil
}
