package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniil11ru/lastseen/cli/locator/model"
)

func sample() *model.Position {
	lat, lng := -12.04, -77.03
	ts := "2024-03-10T11:59:00Z"
	name := "Truck 7"
	return &model.Position{
		EntityID:    "device-001",
		Lat:         &lat,
		Lng:         &lng,
		Timestamp:   &ts,
		Metadata:    map[string]interface{}{"speed": 42.5},
		DisplayName: &name,
		RetrievedAt: "2024-03-10T12:00:00Z",
	}
}

func jsonKeys(t *testing.T, v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestParse(t *testing.T) {
	assert.Equal(t, GPS, Parse("gps"))
	assert.Equal(t, Mobile, Parse("mobile"))
	assert.Equal(t, Full, Parse("full"))
	assert.Equal(t, Full, Parse(""))
	assert.Equal(t, Full, Parse("something-else"))
}

func TestProjectGPSHasExactlyThreeKeys(t *testing.T) {
	out := jsonKeys(t, Project(sample(), GPS))

	assert.Len(t, out, 3)
	assert.Equal(t, "device-001", out["id"])
	assert.Equal(t, -12.04, out["lat"])
	assert.Equal(t, -77.03, out["lng"])
}

func TestProjectMobileNameFallback(t *testing.T) {
	named := Project(sample(), Mobile).(MobilePosition)
	assert.Equal(t, "Truck 7", named.Name)

	anonymous := sample()
	anonymous.DisplayName = nil
	fallback := Project(anonymous, Mobile).(MobilePosition)
	assert.Equal(t, "device-001", fallback.Name)

	out := jsonKeys(t, fallback)
	assert.Len(t, out, 4)
	for _, key := range []string{"id", "lat", "lng", "name"} {
		assert.Contains(t, out, key)
	}
}

func TestProjectFullCarriesEveryCanonicalField(t *testing.T) {
	out := jsonKeys(t, Project(sample(), Full))

	for _, key := range []string{"id", "lat", "lng", "timestamp", "received_at", "updated_at", "metadata", "display_name", "retrieved_at"} {
		assert.Contains(t, out, key)
	}
	assert.Equal(t, "device-001", out["id"])
	assert.Equal(t, "2024-03-10T12:00:00Z", out["retrieved_at"])
}

func TestProjectNeverFailsOnSparseRecords(t *testing.T) {
	sparse := &model.Position{EntityID: "device-002", RetrievedAt: "2024-03-10T12:00:00Z"}

	gps := Project(sparse, GPS).(GPSPosition)
	assert.Nil(t, gps.Lat)
	assert.Nil(t, gps.Lng)

	mobile := Project(sparse, Mobile).(MobilePosition)
	assert.Equal(t, "device-002", mobile.Name)
}

func TestProjectAllPreservesOrder(t *testing.T) {
	records := []*model.Position{
		{EntityID: "a"}, {EntityID: "b"}, {EntityID: "c"},
	}
	projected := ProjectAll(records, GPS)
	require.Len(t, projected, 3)
	assert.Equal(t, "a", projected[0].(GPSPosition).ID)
	assert.Equal(t, "b", projected[1].(GPSPosition).ID)
	assert.Equal(t, "c", projected[2].(GPSPosition).ID)
}
