package source

import (
	"context"
	"time"
)

type RecordKind string

const (
	KindSeismic RecordKind = "seismic"
	KindWeather RecordKind = "weather"
)

// Record is a transient raw feed record. It carries the superset of fields
// the two feeds provide, discriminated by Kind; records are discarded after
// normalization.
type Record struct {
	Kind       RecordKind
	ExternalID string
	Title      string
	Location   string
	URL        string
	OccurredAt time.Time

	// Seismic fields.
	Magnitude    float64
	Depth        float64
	Significance int
	Latitude     float64
	Longitude    float64
	HasCoords    bool

	// Weather fields.
	Event       string
	Severity    string
	Urgency     string
	Description string
	Instruction string
}

// FetchParams narrows one fetch invocation. Zero values mean "use the
// adapter's default".
type FetchParams struct {
	MinMagnitude float64 // seismic only
	Area         string  // weather only, e.g. a state code
}

// Source is one external feed. Fetch never fails past its boundary: on any
// network, status, or decode error it logs and returns an empty slice, and
// the next scheduled tick is the retry.
type Source interface {
	Fetch(ctx context.Context, params FetchParams) []Record
	Label() string
}
