// Package scoring turns repository metadata and documentation text into a
// structured analysis and a utility score. Everything here is a pure
// function of its inputs: same metadata and text always produce the same
// analysis and score. That reproducibility is a correctness requirement,
// so keep side effects and clock/randomness out of this package.

package scoring

import (
	"strings"
)

// Analysis is the structured result persisted with every catalog record.
type Analysis struct {
	Category             string   `json:"category"`
	Features             []string `json:"features"`
	HasDocumentation     bool     `json:"has_documentation"`
	DocumentationQuality string   `json:"documentation_quality"`
	Complexity           string   `json:"complexity"`
	ProductionReady      bool     `json:"production_ready"`
}

// Documentation quality tiers.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityBasic     = "basic"
	QualityPoor      = "poor"
)

// Complexity tiers.
const (
	ComplexityHigh   = "high"
	ComplexityMedium = "medium"
	ComplexityLow    = "low"
)

// categoryChecks is evaluated in order and the first match wins. Order
// matters: terms co-occur (a testing framework will mention "api"), so the
// more specific categories sit first.
var categoryChecks = []struct {
	name  string
	terms []string
}{
	{"authentication", []string{"auth", "login", "oauth", "jwt"}},
	{"api", []string{"api", "rest", "graphql", "endpoint"}},
	{"database", []string{"database", "orm", "sql", "query builder"}},
	{"ui", []string{"component", "frontend", "widget", "user interface"}},
	{"framework", []string{"framework"}},
	{"cli", []string{"cli", "command line", "command-line"}},
	{"testing", []string{"testing", "test runner", "assertion"}},
}

// featureTerms each contribute one independent tag when present.
var featureTerms = []string{"typescript", "async", "security", "performance"}

// Analyze classifies the documentation text for one repository.
func Analyze(doc string, popularity int64) Analysis {
	text := strings.ToLower(doc)
	length := len(doc)

	hasInstall := strings.Contains(text, "install")
	hasUsage := strings.Contains(text, "usage") || strings.Contains(text, "example")

	return Analysis{
		Category:             categorize(text),
		Features:             detectFeatures(text),
		HasDocumentation:     length > 500,
		DocumentationQuality: qualityTier(length, hasInstall, hasUsage),
		Complexity:           complexityTier(length),
		ProductionReady:      strings.Contains(text, "production") || popularity > 1000,
	}
}

func categorize(text string) string {
	for _, check := range categoryChecks {
		for _, term := range check.terms {
			if strings.Contains(text, term) {
				return check.name
			}
		}
	}
	return "general"
}

func detectFeatures(text string) []string {
	features := make([]string, 0, len(featureTerms))
	for _, term := range featureTerms {
		if strings.Contains(text, term) {
			features = append(features, term)
		}
	}
	return features
}

func qualityTier(length int, hasInstall, hasUsage bool) string {
	switch {
	case length > 3000 && hasInstall && hasUsage:
		return QualityExcellent
	case length > 1500 && (hasInstall || hasUsage):
		return QualityGood
	case length > 500:
		return QualityBasic
	default:
		return QualityPoor
	}
}

func complexityTier(length int) string {
	switch {
	case length > 5000:
		return ComplexityHigh
	case length > 2000:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// Score computes the utility score for a record. Base 5.0, additive bonuses,
// capped at 10.0. All bonuses are non-negative so 5.0 is also the floor.
func Score(popularity int64, analysis Analysis) float64 {
	score := 5.0

	switch {
	case popularity > 10000:
		score += 2.0
	case popularity > 1000:
		score += 1.0
	case popularity > 100:
		score += 0.5
	}

	switch analysis.DocumentationQuality {
	case QualityExcellent:
		score += 1.5
	case QualityGood:
		score += 1.0
	case QualityBasic:
		score += 0.5
	}

	score += 0.2 * float64(len(analysis.Features))

	if analysis.ProductionReady {
		score += 1.0
	}

	if score > 10.0 {
		score = 10.0
	}

	return score
}
