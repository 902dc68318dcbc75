package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const usgsLabel = "usgs"

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}

type usgsProperties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"` // unix millis
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Sig   int     `json:"sig"`
}

type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// USGS fetches recent earthquakes from the USGS FDSN event service over a
// trailing time window.
type USGS struct {
	baseURL      string
	client       *http.Client
	userAgent    string
	windowHours  int
	minMagnitude float64
}

func NewUSGS(baseURL, userAgent string, timeout time.Duration, windowHours int, minMagnitude float64) *USGS {
	return &USGS{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		userAgent:    userAgent,
		windowHours:  windowHours,
		minMagnitude: minMagnitude,
	}
}

func (u *USGS) Label() string { return usgsLabel }

func (u *USGS) Fetch(ctx context.Context, params FetchParams) []Record {
	records, err := u.fetch(ctx, params)
	if err != nil {
		slog.Error("usgs fetch failed", "error", err)
		return nil
	}
	slog.Info("fetched earthquakes", "source", usgsLabel, "count", len(records))
	return records
}

func (u *USGS) fetch(ctx context.Context, params FetchParams) ([]Record, error) {
	minMag := u.minMagnitude
	if params.MinMagnitude > 0 {
		minMag = params.MinMagnitude
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(u.windowHours) * time.Hour)

	q := url.Values{}
	q.Set("format", "geojson")
	q.Set("starttime", start.Format(time.RFC3339))
	q.Set("endtime", end.Format(time.RFC3339))
	q.Set("minmagnitude", strconv.FormatFloat(minMag, 'f', -1, 64))
	q.Set("orderby", "time-asc")

	reqURL := u.baseURL + "/fdsnws/event/1/query?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	// The feed orders ascending by time; keep that order.
	records := make([]Record, 0, len(data.Features))
	for _, f := range data.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		r := Record{
			Kind:         KindSeismic,
			ExternalID:   f.ID,
			Title:        f.Properties.Title,
			Location:     f.Properties.Place,
			URL:          f.Properties.URL,
			OccurredAt:   time.UnixMilli(f.Properties.Time).UTC(),
			Magnitude:    f.Properties.Mag,
			Significance: f.Properties.Sig,
			Longitude:    f.Geometry.Coordinates[0],
			Latitude:     f.Geometry.Coordinates[1],
			HasCoords:    true,
		}
		if r.Location == "" {
			r.Location = "Unknown location"
		}
		if len(f.Geometry.Coordinates) > 2 {
			r.Depth = f.Geometry.Coordinates[2]
		}
		records = append(records, r)
	}

	return records, nil
}
