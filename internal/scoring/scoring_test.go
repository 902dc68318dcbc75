package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
	"github.com/cdrp-labs/disaster-ingest/internal/source"
)

func TestSeismicSeverity_TierBoundaries(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      models.SeverityTier
	}{
		{3.0, models.SeverityLow},
		{4.0, models.SeverityLow},
		{4.99, models.SeverityLow},
		{5.0, models.SeverityMedium},
		{5.99, models.SeverityMedium},
		{6.0, models.SeverityHigh},
		{6.99, models.SeverityHigh},
		{7.0, models.SeverityCritical},
		{9.5, models.SeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SeismicSeverity(tt.magnitude), "magnitude %v", tt.magnitude)
	}
}

func TestSeismicSeverity_MonotonicInMagnitude(t *testing.T) {
	rank := map[models.SeverityTier]int{
		models.SeverityLow:      0,
		models.SeverityMedium:   1,
		models.SeverityHigh:     2,
		models.SeverityCritical: 3,
	}

	prev := -1
	for m := 0.0; m <= 10.0; m += 0.1 {
		cur := rank[SeismicSeverity(m)]
		assert.GreaterOrEqual(t, cur, prev, "severity decreased at magnitude %.1f", m)
		prev = cur
	}
}

func TestSeismicPriority(t *testing.T) {
	// min(75, 100) + min(50, 50)
	assert.Equal(t, 125.0, SeismicPriority(7.5, 1000))
	// 40 + 0
	assert.Equal(t, 40.0, SeismicPriority(4.0, 0))
	// magnitude component caps at 100
	assert.Equal(t, 100.0, SeismicPriority(12.0, 0))
	// significance component caps at 50
	assert.Equal(t, 110.0, SeismicPriority(6.0, 5000))
}

func TestSeismicAffectedPopulation(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      int
	}{
		{4.2, 1000},
		{5.0, 10000},
		{6.0, 50000},
		{7.0, 100000},
		{8.3, 100000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SeismicAffectedPopulation(tt.magnitude), "magnitude %v", tt.magnitude)
	}
}

func TestWeatherSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, WeatherSeverity("Extreme"))
	assert.Equal(t, models.SeverityHigh, WeatherSeverity("severe"))
	assert.Equal(t, models.SeverityMedium, WeatherSeverity("MODERATE"))
	assert.Equal(t, models.SeverityLow, WeatherSeverity("minor"))
	assert.Equal(t, models.SeverityLow, WeatherSeverity("something-else"))
}

func TestWeatherPriority(t *testing.T) {
	assert.Equal(t, 150.0, WeatherPriority("extreme", "immediate"))
	assert.Equal(t, 110.0, WeatherPriority("severe", "expected"))
	// unrecognized strings fall back to the unknown bucket in each table
	assert.Equal(t, 50.0, WeatherPriority("unknown-string", "unknown-string"))
	assert.Equal(t, 70.0, WeatherPriority("Moderate", "bogus"))
}

func TestAdmissible(t *testing.T) {
	assert.True(t, Admissible(source.Record{Kind: source.KindSeismic, Magnitude: 1.0}))

	admitted := []string{"Severe", "extreme", "moderate"}
	for _, s := range admitted {
		assert.True(t, Admissible(source.Record{Kind: source.KindWeather, Severity: s}), "severity %s", s)
	}

	// minor and unknown alerts never enter the pipeline, whatever the urgency
	rejected := []string{"Minor", "Unknown", ""}
	for _, s := range rejected {
		assert.False(t, Admissible(source.Record{Kind: source.KindWeather, Severity: s, Urgency: "Immediate"}), "severity %s", s)
	}
}

func TestScore_DispatchesOnKind(t *testing.T) {
	seismic := Score(source.Record{Kind: source.KindSeismic, Magnitude: 7.5, Significance: 1000})
	assert.Equal(t, models.SeverityCritical, seismic.Severity)
	assert.Equal(t, 125.0, seismic.Priority)
	assert.Equal(t, 100000, seismic.AffectedPopulation)

	weather := Score(source.Record{Kind: source.KindWeather, Severity: "severe", Urgency: "immediate"})
	assert.Equal(t, models.SeverityHigh, weather.Severity)
	assert.Equal(t, 130.0, weather.Priority)
	assert.Zero(t, weather.AffectedPopulation)
}
