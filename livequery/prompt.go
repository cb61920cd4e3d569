package livequery

import (
	"fmt"
	"strings"

	"horizon-scanner/models"
)

// Prompts carries the editable instruction blocks sent with every query.
type Prompts struct {
	System             string
	Pestel             string
	SignalDefinition   string
	SourceDiversity    string
	MetricsMethodology string
}

const sourceRules = `CRITICAL SOURCE REQUIREMENTS - READ CAREFULLY:
- Each signal must cite EXACTLY ONE source
- The "source" field must contain ONLY ONE publication name
- DO NOT include commas, semicolons, or "and" to combine sources
- DO NOT write "OECD, Deloitte" - choose ONE: either "OECD" OR "Deloitte"
- DO NOT write "Nature, Science" - choose ONE: either "Nature" OR "Science"
- Example CORRECT: "source": "McKinsey Global Institute Report 2025"
- Example INCORRECT: "source": "McKinsey, BCG" ← NEVER DO THIS
- Example INCORRECT: "source": "OECD; World Bank" ← NEVER DO THIS`

const outputShape = `Each signal must have this exact structure:
{
  "title": "string",
  "description": "string",
  "driverCategory": "Political|Economic|Social|Technological|Environmental|Legal",
  "evidence": "string",
  "caseStudy": "string",
  "relevanceNote": "string",
  "source": "string (EXACTLY ONE SOURCE NAME ONLY - no commas, semicolons, or combining)",
  "sourceUrl": "string (full URL to the ONE source)",
  "impact": number (1-10),
  "uncertainty": number (1-10),
  "probability": number (1-10),
  "impactRationale": "string (1-2 sentence explanation)",
  "uncertaintyRationale": "string (1-2 sentence explanation)",
  "probabilityRationale": "string (1-2 sentence explanation)"
}`

// BuildUserPrompt assembles the user-role message: query header, optional
// context and document manifest, the four instruction blocks, then the
// one-source rule and the required output shape.
func BuildUserPrompt(params models.SearchParams, prompts Prompts, target int) string {
	var context strings.Builder
	if params.DetailedContext != "" {
		context.WriteString("\n\nSPECIFIC CONTEXT:\n")
		context.WriteString(params.DetailedContext)
	}
	if len(params.Documents) > 0 {
		fmt.Fprintf(&context, "\n\nCONTEXT DOCUMENTS: User has provided %d document(s) as ground truth for analysis: %s",
			len(params.Documents), strings.Join(params.Documents, ", "))
	}

	return fmt.Sprintf(`Search for weak signals relevant to:
DOMAIN: %s
GEOGRAPHY: %s
TIMELINE: %s
%s

%s

%s

%s

%s

%s

Return exactly %d weak signals in valid JSON array format. %s`,
		params.Domain, params.Geography, params.Timeline, context.String(),
		prompts.Pestel, prompts.SignalDefinition, prompts.SourceDiversity, prompts.MetricsMethodology,
		sourceRules, target, outputShape)
}
