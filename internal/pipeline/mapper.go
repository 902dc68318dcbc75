package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
	"github.com/cdrp-labs/disaster-ingest/internal/scoring"
	"github.com/cdrp-labs/disaster-ingest/internal/source"
	"github.com/cdrp-labs/disaster-ingest/internal/store"
)

const (
	seismicCategoryCode = "EQ"

	seismicConfidence = 0.95
	weatherConfidence = 0.90

	seismicResources = "Emergency response team, medical supplies, search and rescue equipment"
	weatherResources = "Weather monitoring, evacuation support, emergency shelters"
)

// Mapping failures that drop a single record and continue the run.
var (
	ErrUnmappedEvent   = errors.New("no disaster category for event label")
	ErrUnknownCategory = errors.New("disaster category not found")
	ErrUnknownRegion   = errors.New("region not found")
)

// weatherEventCodes maps keywords in a weather event label to a disaster
// category code. Checked in order.
var weatherEventCodes = []struct {
	keyword string
	code    string
}{
	{"flood", "FL"},
	{"flash flood", "FL"},
	{"hurricane", "HU"},
	{"tornado", "TO"},
	{"blizzard", "BZ"},
	{"wildfire", "WF"},
	{"fire weather", "WF"},
	{"drought", "DR"},
}

// Mapper converts an admitted raw record plus its score into a canonical
// incident, resolving category and region references through the lookup
// collaborator. Every import currently targets the single default region
// regardless of the record's actual geography; that is a product-level
// simplification, not geography inference to be added here.
type Mapper struct {
	store      store.IncidentStore
	lookup     store.Lookup
	regionCode string
}

func NewMapper(st store.IncidentStore, lookup store.Lookup, regionCode string) *Mapper {
	return &Mapper{
		store:      st,
		lookup:     lookup,
		regionCode: regionCode,
	}
}

// AutomatedActor resolves the well-known system actor, creating it on first
// use. Idempotent; called once at the start of each run so the batch is
// attributed before any record is staged.
func (m *Mapper) AutomatedActor(ctx context.Context) (*models.Actor, error) {
	actor, err := m.store.FindActorByName(ctx, models.AutomatedActorName)
	if err != nil {
		return nil, fmt.Errorf("error looking up automated actor: %w", err)
	}
	if actor != nil {
		return actor, nil
	}

	var regionID int64
	if region, err := m.lookup.RegionByCode(ctx, m.regionCode); err == nil && region != nil {
		regionID = region.ID
	}

	actor, err = m.store.CreateActor(ctx, &models.Actor{
		Name:        models.AutomatedActorName,
		DisplayName: "System Automated",
		Role:        models.AutomatedActorRole,
		RegionID:    regionID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating automated actor: %w", err)
	}
	return actor, nil
}

// Normalize builds the canonical incident for one record. Unresolvable
// category or region references return an error and the record is dropped.
func (m *Mapper) Normalize(ctx context.Context, rec source.Record, score scoring.Result, actorID int64) (*models.Incident, error) {
	categoryCode := seismicCategoryCode
	if rec.Kind == source.KindWeather {
		categoryCode = weatherCategoryCode(rec.Event)
		if categoryCode == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedEvent, rec.Event)
		}
	}

	category, err := m.lookup.CategoryByCode(ctx, categoryCode)
	if err != nil {
		return nil, fmt.Errorf("error resolving category %s: %w", categoryCode, err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryCode)
	}

	region, err := m.lookup.RegionByCode(ctx, m.regionCode)
	if err != nil {
		return nil, fmt.Errorf("error resolving region %s: %w", m.regionCode, err)
	}
	if region == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, m.regionCode)
	}

	inc := &models.Incident{
		Severity:           score.Severity,
		Status:             models.StatusPending,
		CategoryID:         category.ID,
		RegionID:           region.ID,
		CreatedBy:          actorID,
		PriorityScore:      score.Priority,
		IsAutomated:        true,
		AffectedPopulation: score.AffectedPopulation,
		CreatedAt:          time.Now().UTC(),
	}

	if rec.Kind == source.KindWeather {
		inc.Title = fmt.Sprintf("%s - %s", rec.Event, truncate(rec.Location, 100))
		inc.Description = weatherDescription(rec)
		inc.Location = truncate(rec.Location, 255)
		inc.Confidence = weatherConfidence
		inc.RequiredResources = weatherResources
	} else {
		inc.Title = "Earthquake Alert - " + magnitudeSignature(rec.Magnitude)
		inc.Description = seismicDescription(rec)
		inc.Location = rec.Location
		inc.Confidence = seismicConfidence
		inc.RequiredResources = seismicResources
	}

	if rec.HasCoords {
		inc.Coordinates = fmt.Sprintf("%v,%v", rec.Latitude, rec.Longitude)
	}

	return inc, nil
}

// magnitudeSignature is shared between the title builder and the dedup
// predicate so the two always agree on formatting.
func magnitudeSignature(magnitude float64) string {
	return fmt.Sprintf("Magnitude %v", magnitude)
}

// Field order in these templates is fixed; downstream dedup and operator
// tooling rely on it being deterministic.
func seismicDescription(rec source.Record) string {
	return fmt.Sprintf(
		"Earthquake detected: %s\n\n"+
			"Magnitude: %v\n"+
			"Depth: %v km\n"+
			"Time: %s\n"+
			"Significance: %d\n\n"+
			"More info: %s",
		rec.Title, rec.Magnitude, rec.Depth,
		rec.OccurredAt.Format(time.RFC3339), rec.Significance, rec.URL)
}

func weatherDescription(rec source.Record) string {
	return fmt.Sprintf(
		"Weather Alert ID: %s\n\n"+
			"%s\n\n"+
			"Severity: %s\n"+
			"Urgency: %s\n"+
			"Areas: %s\n\n"+
			"Instructions: %s\n\n"+
			"More info: %s",
		rec.ExternalID, rec.Description, rec.Severity, rec.Urgency,
		rec.Location, rec.Instruction, rec.URL)
}

func weatherCategoryCode(event string) string {
	eventLower := strings.ToLower(event)
	for _, m := range weatherEventCodes {
		if strings.Contains(eventLower, m.keyword) {
			return m.code
		}
	}

	// Other water-related events default to flood.
	for _, word := range []string{"rain", "storm", "water"} {
		if strings.Contains(eventLower, word) {
			return "FL"
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
