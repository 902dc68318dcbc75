package store

import (
	"context"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
)

// DedupPredicate is a substring containment check against committed
// incidents. TitleContains always applies; of the other two, only the
// non-empty field is checked.
type DedupPredicate struct {
	TitleContains       string
	LocationContains    string
	DescriptionContains string
}

type Filter struct {
	Limit    int
	Offset   int
	Severity *models.SeverityTier
	Status   *models.IncidentStatus
}

// IncidentStore is the durable record store the pipeline writes to.
// InsertBatch is atomic: either every incident in the slice is persisted or
// none is. Find methods return (nil, nil) when no row matches.
type IncidentStore interface {
	Exists(ctx context.Context, p DedupPredicate) (bool, error)
	InsertBatch(ctx context.Context, incidents []*models.Incident) (int, error)
	ListIncidents(ctx context.Context, opts Filter) ([]models.Incident, error)
	FindActorByName(ctx context.Context, name string) (*models.Actor, error)
	CreateActor(ctx context.Context, a *models.Actor) (*models.Actor, error)
}

// Lookup resolves disaster-category and region reference rows by code.
type Lookup interface {
	CategoryByCode(ctx context.Context, code string) (*models.Category, error)
	RegionByCode(ctx context.Context, code string) (*models.Region, error)
}
