package models

import "time"

// Category is a disaster-category reference row (e.g., code "EQ" for
// earthquakes). Resolved by code during normalization.
type Category struct {
	ID   int64
	Name string
	Code string
}

// Region is a geographic region reference row. Imports currently always
// resolve to the default region, see pipeline.Mapper.
type Region struct {
	ID   int64
	Name string
	Code string
}

// Actor identifies who created a record. Automated imports are attributed
// to a well-known system actor created lazily on first use.
type Actor struct {
	ID          int64
	Name        string
	DisplayName string
	Role        string
	RegionID    int64
	CreatedAt   time.Time
}

const (
	AutomatedActorName = "system"
	AutomatedActorRole = "ADMIN"
)
