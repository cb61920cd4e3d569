package normalize

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizon-scanner/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(source string, extra string) string {
	return fmt.Sprintf(`{"title":"Seawater batteries","description":"Sodium chemistries scale","driverCategory":"Technological",`+
		`"evidence":"Pilot plants","caseStudy":"Busan grid trial","relevanceNote":"Storage lending",`+
		`"source":%q,"impact":7,"uncertainty":6,"probability":5%s}`, source, extra)
}

func TestNormalize_ExtractsArrayFromProse(t *testing.T) {
	raw := "Here are the signals you asked for:\n```json\n[" + record("Nature Energy", "") + "]\n```\nLet me know if you need more."

	got, err := NormalizeAt(raw, fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Seawater batteries", got[0].Title)
	assert.Equal(t, models.Technological, got[0].DriverCategory)
	assert.Equal(t, "Nature Energy", got[0].Source)
	assert.Equal(t, models.SignalID(fixedNow, 0), got[0].ID)
}

func TestNormalize_CollapsesSources(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"comma", "OECD, Deloitte", "OECD"},
		{"semicolon", "OECD; World Bank", "OECD"},
		{"comma before semicolon", "McKinsey, BCG; Bain", "McKinsey"},
		{"semicolon before comma", "IMF Report 2025; OECD, Study", "IMF Report 2025"},
		{"single", "McKinsey Global Institute Report 2025", "McKinsey Global Institute Report 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAt("["+record(tt.source, "")+"]", fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[0].Source)
		})
	}
}

func TestNormalize_KeepsFirstCitation(t *testing.T) {
	extra := `,"sources":[{"text":"Brookings","url":"https://brookings.edu/a"},{"text":"RAND","url":"https://rand.org/b"}]`
	got, err := NormalizeAt("["+record("Brookings", extra)+"]", fixedNow)
	require.NoError(t, err)

	require.Len(t, got[0].Sources, 1)
	assert.Equal(t, models.SourceCitation{Text: "Brookings", URL: "https://brookings.edu/a"}, got[0].Sources[0])
}

func TestNormalize_SourceFromCitation(t *testing.T) {
	extra := `,"sources":[{"text":"Chatham House, RAND","url":"https://chathamhouse.org/x"}]`
	got, err := NormalizeAt("["+record("", extra)+"]", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "Chatham House", got[0].Source)
	assert.Equal(t, "https://chathamhouse.org/x", got[0].SourceURL)
}

func TestNormalize_AssignsUniqueIDs(t *testing.T) {
	raw := "[" + record("A", "") + "," + record("B", "") + "," + record("C", "") + "]"
	got, err := NormalizeAt(raw, fixedNow)
	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no array", "I could not find any signals for that topic."},
		{"closing before opening", "] nothing here ["},
		{"invalid json", "[{title: 'unquoted'}]"},
		{"empty array", "Result: []"},
		{"wrong score type", "[" + `{"title":"t","impact":"high"}` + "]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAt(tt.raw, fixedNow)
			assert.Nil(t, got)
			var malformed *MalformedResponseError
			assert.True(t, errors.As(err, &malformed), "got %v", err)
		})
	}
}

func TestNormalize_RejectsOutOfRangeScores(t *testing.T) {
	bad := `{"title":"t","description":"d","driverCategory":"Legal","source":"s","impact":11,"uncertainty":0,"probability":5}`
	raw := "[" + record("Reuters", "") + "," + bad + "]"

	got, err := NormalizeAt(raw, fixedNow)
	assert.Nil(t, got)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	require.Contains(t, malformed.Invalid, 1)
	assert.NotContains(t, malformed.Invalid, 0)

	fields := map[string]bool{}
	for _, issue := range malformed.Invalid[1] {
		fields[issue.Field] = true
	}
	assert.True(t, fields["impact"])
	assert.True(t, fields["uncertainty"])
}

func TestNormalize_RejectsMissingFieldsAndUnknownCategory(t *testing.T) {
	raw := `[{"title":" ","description":"d","driverCategory":"Cultural","source":"s","impact":5,"uncertainty":5,"probability":5}]`
	_, err := NormalizeAt(raw, fixedNow)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	fields := map[string]string{}
	for _, issue := range malformed.Invalid[0] {
		fields[issue.Field] = issue.Rule
	}
	assert.Equal(t, "required", fields["title"])
	assert.Equal(t, "pestel", fields["driverCategory"])
}

func TestExtractArray(t *testing.T) {
	span, ok := ExtractArray("prefix [1, [2], 3] suffix ] tail")
	assert.True(t, ok)
	assert.Equal(t, "[1, [2], 3] suffix ]", span)

	_, ok = ExtractArray("no brackets")
	assert.False(t, ok)
}

func TestNormalize_BareStringSources(t *testing.T) {
	extra := `,"sources":["OECD","World Bank"]`
	got, err := NormalizeAt("["+record("", extra)+"]", fixedNow)
	require.NoError(t, err)

	require.Len(t, got[0].Sources, 1)
	assert.Equal(t, models.SourceCitation{Text: "OECD"}, got[0].Sources[0])
	assert.Equal(t, "OECD", got[0].Source)
}

func TestNormalize_CollapsesCitationText(t *testing.T) {
	extra := `,"sources":[{"text":"Brookings, RAND; CSIS","url":"https://brookings.edu/a"}]`
	got, err := NormalizeAt("["+record("Brookings, RAND", extra)+"]", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "Brookings", got[0].Source)
	require.Len(t, got[0].Sources, 1)
	assert.Equal(t, "Brookings", got[0].Sources[0].Text)
	assert.Equal(t, got[0].Source, got[0].Sources[0].Text)
}
