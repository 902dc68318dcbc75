package models

import "time"

type SeverityTier string

const (
	SeverityLow      SeverityTier = "LOW"
	SeverityMedium   SeverityTier = "MEDIUM"
	SeverityHigh     SeverityTier = "HIGH"
	SeverityCritical SeverityTier = "CRITICAL"
)

type IncidentStatus string

const (
	StatusPending    IncidentStatus = "PENDING"
	StatusInProgress IncidentStatus = "IN_PROGRESS"
	StatusResolved   IncidentStatus = "RESOLVED"
)

// Incident is the canonical record persisted for one detected disaster
// signal. It is created by the pipeline, staged in a batch, and never
// mutated after the batch commits.
type Incident struct {
	ID                 int64
	Title              string
	Description        string
	Location           string
	Coordinates        string // "lat,lon", empty when unknown
	Severity           SeverityTier
	Status             IncidentStatus
	CategoryID         int64
	RegionID           int64
	CreatedBy          int64
	PriorityScore      float64
	IsAutomated        bool
	Confidence         float64
	AffectedPopulation int // 0 when not estimated
	RequiredResources  string
	CreatedAt          time.Time
}
