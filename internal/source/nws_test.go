package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nwsPayload = `{
	"features": [
		{
			"properties": {
				"id": "urn:oid:2.49.0.1.840.0.abc123",
				"headline": "Flash Flood Warning issued for Riverside County",
				"description": "Heavy rainfall is causing flash flooding.",
				"event": "Flash Flood Warning",
				"severity": "Severe",
				"urgency": "Immediate",
				"areaDesc": "Riverside County, CA",
				"instruction": "Move to higher ground.",
				"web": "https://alerts.weather.gov/abc123"
			},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[-117.0, 33.0], [-117.2, 33.4], [-116.8, 33.8]]]
			}
		},
		{
			"properties": {
				"id": "urn:oid:2.49.0.1.840.0.def456",
				"headline": "",
				"event": "",
				"severity": "",
				"urgency": "",
				"areaDesc": "Somewhere"
			},
			"geometry": null
		}
	]
}`

func TestNWS_Fetch(t *testing.T) {
	var gotUserAgent, gotArea string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotArea = r.URL.Query().Get("area")
		w.Write([]byte(nwsPayload))
	}))
	defer srv.Close()

	n := NewNWS(srv.URL, "test-agent/1.0", 5*time.Second)
	records := n.Fetch(context.Background(), FetchParams{})

	require.Len(t, records, 2)
	assert.Equal(t, "test-agent/1.0", gotUserAgent, "feed usage policy requires an identifying User-Agent")
	assert.Empty(t, gotArea)

	first := records[0]
	assert.Equal(t, KindWeather, first.Kind)
	assert.Equal(t, "urn:oid:2.49.0.1.840.0.abc123", first.ExternalID)
	assert.Equal(t, "Flash Flood Warning", first.Event)
	assert.Equal(t, "Severe", first.Severity)
	assert.Equal(t, "Immediate", first.Urgency)
	assert.Equal(t, "Riverside County, CA", first.Location)
	assert.Equal(t, "Move to higher ground.", first.Instruction)

	// representative point is the arithmetic mean of the vertices,
	// deliberately not a true centroid
	require.True(t, first.HasCoords)
	assert.InDelta(t, 33.4, first.Latitude, 1e-9)
	assert.InDelta(t, -117.0, first.Longitude, 1e-9)

	// missing fields default, missing geometry yields no coordinates
	second := records[1]
	assert.Equal(t, "Weather Alert", second.Title)
	assert.Equal(t, "Unknown", second.Event)
	assert.Equal(t, "Unknown", second.Severity)
	assert.Equal(t, "Unknown", second.Urgency)
	assert.False(t, second.HasCoords)
}

func TestNWS_Fetch_AreaFilter(t *testing.T) {
	var gotArea string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotArea = r.URL.Query().Get("area")
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	n := NewNWS(srv.URL, "test-agent/1.0", 5*time.Second)
	n.Fetch(context.Background(), FetchParams{Area: "CA"})

	assert.Equal(t, "CA", gotArea)
}

func TestNWS_Fetch_ErrorsReturnEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNWS(srv.URL, "test-agent/1.0", 5*time.Second)
	assert.Empty(t, n.Fetch(context.Background(), FetchParams{}))
}

func TestPolygonMean(t *testing.T) {
	g := &nwsGeometry{
		Type:        "Polygon",
		Coordinates: [][][]float64{{{-100.0, 40.0}, {-102.0, 42.0}}},
	}
	lat, lon, ok := polygonMean(g)
	require.True(t, ok)
	assert.Equal(t, 41.0, lat)
	assert.Equal(t, -101.0, lon)

	_, _, ok = polygonMean(nil)
	assert.False(t, ok)

	_, _, ok = polygonMean(&nwsGeometry{Type: "Point"})
	assert.False(t, ok)

	_, _, ok = polygonMean(&nwsGeometry{Type: "Polygon", Coordinates: [][][]float64{{}}})
	assert.False(t, ok)
}
