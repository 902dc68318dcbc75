// Package scoring maps raw feed signals to canonical severity tiers and
// numeric priority scores. Everything here is pure and deterministic.
package scoring

import (
	"strings"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
	"github.com/cdrp-labs/disaster-ingest/internal/source"
)

// Result is the scorer output for one record. AffectedPopulation is 0 when
// no estimate applies (weather alerts).
type Result struct {
	Severity           models.SeverityTier
	Priority           float64
	AffectedPopulation int
}

var weatherSeverityScores = map[string]float64{
	"extreme":  100,
	"severe":   80,
	"moderate": 60,
	"minor":    40,
	"unknown":  30,
}

var weatherUrgencyScores = map[string]float64{
	"immediate": 50,
	"expected":  30,
	"future":    20,
	"past":      10,
	"unknown":   20,
}

// Score dispatches on the record kind. Callers filter weather records with
// Admissible before scoring.
func Score(rec source.Record) Result {
	if rec.Kind == source.KindWeather {
		return Result{
			Severity: WeatherSeverity(rec.Severity),
			Priority: WeatherPriority(rec.Severity, rec.Urgency),
		}
	}
	return Result{
		Severity:           SeismicSeverity(rec.Magnitude),
		Priority:           SeismicPriority(rec.Magnitude, rec.Significance),
		AffectedPopulation: SeismicAffectedPopulation(rec.Magnitude),
	}
}

// Admissible reports whether the record should enter the pipeline at all.
// Weather alerts below moderate categorical severity never become incidents.
func Admissible(rec source.Record) bool {
	if rec.Kind != source.KindWeather {
		return true
	}
	switch strings.ToLower(rec.Severity) {
	case "severe", "extreme", "moderate":
		return true
	}
	return false
}

func SeismicSeverity(magnitude float64) models.SeverityTier {
	switch {
	case magnitude >= 7.0:
		return models.SeverityCritical
	case magnitude >= 6.0:
		return models.SeverityHigh
	case magnitude >= 5.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// SeismicPriority combines a magnitude component capped at 100 with a
// significance component capped at 50.
func SeismicPriority(magnitude float64, significance int) float64 {
	magScore := magnitude * 10
	if magScore > 100 {
		magScore = 100
	}
	sigScore := float64(significance) / 20
	if sigScore > 50 {
		sigScore = 50
	}
	return magScore + sigScore
}

// SeismicAffectedPopulation is a coarse step-function estimate, not a
// demographic model.
func SeismicAffectedPopulation(magnitude float64) int {
	switch {
	case magnitude >= 7.0:
		return 100000
	case magnitude >= 6.0:
		return 50000
	case magnitude >= 5.0:
		return 10000
	default:
		return 1000
	}
}

func WeatherSeverity(severity string) models.SeverityTier {
	switch strings.ToLower(severity) {
	case "extreme":
		return models.SeverityCritical
	case "severe":
		return models.SeverityHigh
	case "moderate":
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// WeatherPriority is a table lookup on the categorical severity and urgency
// strings; unrecognized values fall back to the "unknown" bucket.
func WeatherPriority(severity, urgency string) float64 {
	sevScore, ok := weatherSeverityScores[strings.ToLower(severity)]
	if !ok {
		sevScore = weatherSeverityScores["unknown"]
	}
	urgScore, ok := weatherUrgencyScores[strings.ToLower(urgency)]
	if !ok {
		urgScore = weatherUrgencyScores["unknown"]
	}
	return sevScore + urgScore
}
