package postgis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live database only when NATOGRID_TEST_POSTGIS_DSN is set.
func newTestStore(t *testing.T) *PlaceStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("NATOGRID_TEST_POSTGIS_DSN")
	if dsn == "" {
		t.Skip("NATOGRID_TEST_POSTGIS_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewPlaceStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.InitSchema(ctx))
	_, err = store.db.ExecContext(ctx, "TRUNCATE grid_places")
	require.NoError(t, err)
	return store
}

func TestPlaceStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	places := []*models.Place{
		{ID: "place_1", Name: "Warsaw", Code: "NSZGWAWQOSRM", Location: &models.Location{Lat: 52.2297, Lon: 21.0122}},
		{ID: "place_2", Name: "Krakow", Code: "EPPLPJFFBUKO", Location: &models.Location{Lat: 50.0614, Lon: 19.9372}},
		{ID: "place_3", Name: "Dom", Code: "NVSNLDXWDHIX", Location: &models.Location{Lat: 52.1658, Lon: 22.2716}},
		{ID: "place_4", Name: "Nowhere"},
	}
	require.NoError(t, store.UpsertPlaces(ctx, places))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	found, err := store.QueryBox(ctx, models.NewBoundingBox(51.5, 53.0, 20.5, 23.0))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Dom", found[0].Name)
	assert.Equal(t, "Warsaw", found[1].Name)
	assert.InDelta(t, 52.2297, found[1].Location.Lat, 1e-9)

	byCode, err := store.FindByCode(ctx, "EPPLPJFFBUKO")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Krakow", byCode[0].Name)

	// Upsert replaces by id
	places[1].Name = "Kraków"
	require.NoError(t, store.UpsertPlaces(ctx, places[1:2]))
	byCode, err = store.FindByCode(ctx, "EPPLPJFFBUKO")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Kraków", byCode[0].Name)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
