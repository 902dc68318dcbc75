package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const nwsLabel = "nws"

type nwsResponse struct {
	Features []nwsFeature `json:"features"`
}

type nwsFeature struct {
	Properties nwsProperties `json:"properties"`
	Geometry   *nwsGeometry  `json:"geometry"`
}

type nwsProperties struct {
	ID          string `json:"id"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Urgency     string `json:"urgency"`
	AreaDesc    string `json:"areaDesc"`
	Instruction string `json:"instruction"`
	Web         string `json:"web"`
}

type nwsGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"` // polygon rings of [lon, lat]
}

// NWS fetches active weather alerts from the National Weather Service API.
// The API's usage policy requires an identifying User-Agent.
type NWS struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

func NewNWS(baseURL, userAgent string, timeout time.Duration) *NWS {
	return &NWS{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (n *NWS) Label() string { return nwsLabel }

func (n *NWS) Fetch(ctx context.Context, params FetchParams) []Record {
	records, err := n.fetch(ctx, params)
	if err != nil {
		slog.Error("nws fetch failed", "error", err)
		return nil
	}
	slog.Info("fetched weather alerts", "source", nwsLabel, "count", len(records))
	return records
}

func (n *NWS) fetch(ctx context.Context, params FetchParams) ([]Record, error) {
	reqURL := n.baseURL + "/alerts/active"
	if params.Area != "" {
		q := url.Values{}
		q.Set("area", params.Area)
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data nwsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	records := make([]Record, 0, len(data.Features))
	for _, f := range data.Features {
		r := Record{
			Kind:        KindWeather,
			ExternalID:  f.Properties.ID,
			Title:       f.Properties.Headline,
			Location:    f.Properties.AreaDesc,
			URL:         f.Properties.Web,
			Event:       f.Properties.Event,
			Severity:    f.Properties.Severity,
			Urgency:     f.Properties.Urgency,
			Description: f.Properties.Description,
			Instruction: f.Properties.Instruction,
		}
		if r.Title == "" {
			r.Title = "Weather Alert"
		}
		if r.Event == "" {
			r.Event = "Unknown"
		}
		if r.Severity == "" {
			r.Severity = "Unknown"
		}
		if r.Urgency == "" {
			r.Urgency = "Unknown"
		}
		if lat, lon, ok := polygonMean(f.Geometry); ok {
			r.Latitude = lat
			r.Longitude = lon
			r.HasCoords = true
		}
		records = append(records, r)
	}

	return records, nil
}

// polygonMean reduces a polygon's outer ring to a single representative
// point: the arithmetic mean of vertex latitudes and longitudes. Not a true
// centroid; kept as an approximation.
func polygonMean(g *nwsGeometry) (lat, lon float64, ok bool) {
	if g == nil || g.Type != "Polygon" || len(g.Coordinates) == 0 || len(g.Coordinates[0]) == 0 {
		return 0, 0, false
	}

	ring := g.Coordinates[0]
	var sumLat, sumLon float64
	count := 0
	for _, point := range ring {
		if len(point) < 2 {
			continue
		}
		sumLon += point[0]
		sumLat += point[1]
		count++
	}
	if count == 0 {
		return 0, 0, false
	}
	return sumLat / float64(count), sumLon / float64(count), true
}
