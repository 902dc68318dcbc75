// Package pipeline runs the ingestion flow: fetch raw records from a feed
// adapter, score and normalize each one, skip duplicates, and commit the
// survivors as one atomic batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdrp-labs/disaster-ingest/internal/events"
	"github.com/cdrp-labs/disaster-ingest/internal/models"
	"github.com/cdrp-labs/disaster-ingest/internal/observability"
	"github.com/cdrp-labs/disaster-ingest/internal/scoring"
	"github.com/cdrp-labs/disaster-ingest/internal/source"
	"github.com/cdrp-labs/disaster-ingest/internal/store"
)

// Importer drives one pipeline run end to end. Safe for concurrent use;
// callers serialize runs per job type through a RunGuard.
type Importer struct {
	store       store.IncidentStore
	mapper      *Mapper
	dedup       *Deduplicator
	seismic     source.Source
	weather     source.Source
	metrics     *observability.Metrics
	broadcaster *events.Broadcaster
}

func NewImporter(
	st store.IncidentStore,
	lookup store.Lookup,
	regionCode string,
	seismic, weather source.Source,
	metrics *observability.Metrics,
	broadcaster *events.Broadcaster,
) *Importer {
	return &Importer{
		store:       st,
		mapper:      NewMapper(st, lookup, regionCode),
		dedup:       NewDeduplicator(st),
		seismic:     seismic,
		weather:     weather,
		metrics:     metrics,
		broadcaster: broadcaster,
	}
}

// ImportSeismic runs the pipeline against the seismic feed. A non-positive
// minMagnitude uses the adapter's configured default.
func (imp *Importer) ImportSeismic(ctx context.Context, minMagnitude float64) (int, error) {
	return imp.Run(ctx, imp.seismic, source.FetchParams{MinMagnitude: minMagnitude})
}

// ImportWeather runs the pipeline against the weather feed, optionally
// narrowed to one area code.
func (imp *Importer) ImportWeather(ctx context.Context, area string) (int, error) {
	return imp.Run(ctx, imp.weather, source.FetchParams{Area: area})
}

// Run executes one fetch-score-normalize-dedup-commit cycle for any
// registered adapter and returns the number of newly persisted incidents.
// A commit failure discards the whole batch and reports zero imported.
func (imp *Importer) Run(ctx context.Context, src source.Source, params source.FetchParams) (int, error) {
	startedAt := time.Now()
	label := src.Label()

	records := src.Fetch(ctx, params)
	imp.metrics.RecordsFetched.WithLabelValues(label).Add(float64(len(records)))
	if len(records) == 0 {
		return 0, nil
	}

	actor, err := imp.mapper.AutomatedActor(ctx)
	if err != nil {
		slog.Error("import aborted, no automated actor", "source", label, "error", err)
		return 0, err
	}

	batch := make([]*models.Incident, 0, len(records))
	for _, rec := range records {
		if !scoring.Admissible(rec) {
			imp.metrics.RecordsDropped.WithLabelValues(label, "filtered").Inc()
			continue
		}

		inc, err := imp.mapper.Normalize(ctx, rec, scoring.Score(rec), actor.ID)
		if err != nil {
			imp.metrics.RecordsDropped.WithLabelValues(label, dropReason(err)).Inc()
			slog.Debug("record dropped", "source", label, "id", rec.ExternalID, "error", err)
			continue
		}

		dup, err := imp.dedup.IsDuplicate(ctx, rec)
		if err != nil {
			imp.metrics.RecordsDropped.WithLabelValues(label, "dedup_error").Inc()
			slog.Warn("dedup check failed, record dropped", "source", label, "id", rec.ExternalID, "error", err)
			continue
		}
		if dup {
			imp.metrics.DuplicatesSkipped.WithLabelValues(label).Inc()
			continue
		}

		batch = append(batch, inc)
	}

	count, err := imp.store.InsertBatch(ctx, batch)
	if err != nil {
		imp.metrics.CommitFailures.WithLabelValues(label).Inc()
		slog.Error("batch commit failed, discarding run", "source", label, "staged", len(batch), "error", err)
		return 0, fmt.Errorf("error committing %s batch: %w", label, err)
	}

	imp.metrics.IncidentsImported.WithLabelValues(label).Add(float64(count))
	imp.metrics.ImportDuration.WithLabelValues(label).Observe(time.Since(startedAt).Seconds())

	if imp.broadcaster != nil {
		for _, inc := range batch {
			imp.broadcaster.Broadcast(*inc)
		}
	}

	slog.Info("import complete", "source", label, "fetched", len(records), "imported", count)
	return count, nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrUnmappedEvent), errors.Is(err, ErrUnknownCategory):
		return "category"
	case errors.Is(err, ErrUnknownRegion):
		return "region"
	default:
		return "mapping"
	}
}
