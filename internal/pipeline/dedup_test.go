package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
)

func TestDeduplicator_SeismicRequiresBothPredicates(t *testing.T) {
	st := newFakeStore()
	st.incidents = append(st.incidents, &models.Incident{
		Title:    "Earthquake Alert - Magnitude 6.1",
		Location: "10 km N of Springfield",
	})
	d := NewDeduplicator(st)
	ctx := context.Background()

	// both match
	dup, err := d.IsDuplicate(ctx, quakeRecord("eq1", 6.1))
	require.NoError(t, err)
	assert.True(t, dup)

	// magnitude matches, location does not
	other := quakeRecord("eq2", 6.1)
	other.Location = "offshore Honshu"
	dup, err = d.IsDuplicate(ctx, other)
	require.NoError(t, err)
	assert.False(t, dup)

	// location matches, magnitude does not
	dup, err = d.IsDuplicate(ctx, quakeRecord("eq3", 5.4))
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestDeduplicator_WeatherRequiresBothPredicates(t *testing.T) {
	st := newFakeStore()
	st.incidents = append(st.incidents, &models.Incident{
		Title:       "Tornado Warning - Shelby County, TN",
		Description: "Weather Alert ID: alert-1\n\ndetail",
	})
	d := NewDeduplicator(st)
	ctx := context.Background()

	dup, err := d.IsDuplicate(ctx, alertRecord("alert-1", "Tornado Warning", "Extreme", "Immediate"))
	require.NoError(t, err)
	assert.True(t, dup)

	// same event, different alert id
	dup, err = d.IsDuplicate(ctx, alertRecord("alert-9", "Tornado Warning", "Extreme", "Immediate"))
	require.NoError(t, err)
	assert.False(t, dup)

	// same alert id, different event
	dup, err = d.IsDuplicate(ctx, alertRecord("alert-1", "Flood Warning", "Extreme", "Immediate"))
	require.NoError(t, err)
	assert.False(t, dup)
}
