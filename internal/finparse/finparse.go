// ABOUTME: Text cleaning and financial figure extraction for filing text
// ABOUTME: Shared by the filing processor and the query agent
package finparse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Keeps word characters plus the punctuation that financial notation needs.
	specialCharsRe = regexp.MustCompile(`[^\w\s\.\,\$\%\(\)\-\:]`)

	// FinancialSignal matches sentences likely to carry financial data:
	// currency amounts, percentages, or the core income-statement keywords.
	FinancialSignal = regexp.MustCompile(`(?i)\$[\d,]+|[\d.]+%|revenue|income|margin`)
)

// Figure types produced by ExtractFigures.
const (
	FigureCurrency   = "currency"
	FigurePercentage = "percentage"
	FigureRevenue    = "revenue"
	FigureMargin     = "margin"
)

var figurePatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{FigureCurrency, regexp.MustCompile(`(?i)\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(million|billion|thousand)?`)},
	{FigurePercentage, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%`)},
	{FigureRevenue, regexp.MustCompile(`(?i)revenue\s+(?:of\s+)?\$?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)},
	{FigureMargin, regexp.MustCompile(`(?i)margin\s+(?:of\s+)?(\d+(?:\.\d+)?)\s*%`)},
}

// Figure is one financial number found in filing text, with surrounding
// context for human inspection.
type Figure struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Context  string `json:"context"`
	Position int    `json:"position"`
}

// CleanText normalizes whitespace and strips characters that are neither word
// characters nor part of financial notation ($, %, parentheses, etc).
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialCharsRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractFigures pulls currency amounts, percentages, revenue, and margin
// mentions out of text. Best-effort only; no numeric validation is performed.
func ExtractFigures(text string) []Figure {
	var figures []Figure
	for _, p := range figurePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			ctxStart := start - 50
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + 50
			if ctxEnd > len(text) {
				ctxEnd = len(text)
			}
			figures = append(figures, Figure{
				Type:     p.kind,
				Value:    text[loc[2]:loc[3]],
				Context:  text[ctxStart:ctxEnd],
				Position: start,
			})
		}
	}
	return figures
}

// FilingIdentifier generates the consistent identifier used for raw filing
// files and provenance tags.
func FilingIdentifier(company string, year int) string {
	return fmt.Sprintf("%s_%d_10K", company, year)
}
