package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crux-labs/pricewatch/internal/config"
	"github.com/crux-labs/pricewatch/internal/model"
)

type fakeSearcher struct {
	byRegion map[string][]Place
	err      error
	calls    []string
}

func (f *fakeSearcher) SearchRegion(_ context.Context, _ string, region config.SearchRegion) ([]Place, error) {
	f.calls = append(f.calls, region.Name)
	if f.err != nil {
		return nil, f.err
	}
	return f.byRegion[region.Name], nil
}

func place(id, name, address string, types ...string) Place {
	p := Place{
		ID:               id,
		FormattedAddress: address,
		Types:            types,
	}
	p.DisplayName.Text = name
	p.Location.Latitude = 43.6
	p.Location.Longitude = -79.4
	return p
}

func testPlacesConfig(regions ...config.SearchRegion) config.PlacesConfig {
	return config.PlacesConfig{
		SearchQuery: "climbing gym Ontario",
		Regions:     regions,
	}
}

var (
	regionSouth = config.SearchRegion{Name: "South", Latitude: 43.65, Longitude: -79.38, RadiusMeters: 50000}
	regionEast  = config.SearchRegion{Name: "East", Latitude: 45.42, Longitude: -75.7, RadiusMeters: 50000}
)

func TestSync_NewCandidateAndClosed(t *testing.T) {
	searcher := &fakeSearcher{byRegion: map[string][]Place{
		"South": {
			place("p-known", "Hub Climbing", "123 Main St, Markham, ON, Canada"),
			place("p-new", "Fresh Crag", "9 Side Rd, Toronto, ON, Canada", "gym"),
		},
	}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth))

	existing := []model.GymRecord{
		{GymID: "1", Name: "Hub Climbing", PlaceID: "p-known", Address: "123 Main St", City: "Markham"},
		{GymID: "2", Name: "Gone Gym", PlaceID: "p-gone", Address: "1 Old Rd", City: "Ottawa"},
	}

	results, err := syncer.Sync(context.Background(), existing)
	require.NoError(t, err)

	require.Len(t, results.NewGymCandidates, 1)
	cand := results.NewGymCandidates[0]
	assert.Equal(t, "p-new", cand.PlaceID)
	assert.Equal(t, "Fresh Crag", cand.Name)
	assert.Equal(t, "Toronto", cand.City)
	assert.Equal(t, MapsURL("p-new"), cand.MapsURL)

	require.Len(t, results.PotentiallyClosed, 1)
	assert.Equal(t, "p-gone", results.PotentiallyClosed[0].PlaceID)
	assert.Equal(t, "Gone Gym", results.PotentiallyClosed[0].Name)

	assert.Equal(t, 2, results.ExistingGymsCount)
	assert.Equal(t, 1, results.APICallsMade)
}

func TestSync_FiltersExcludedTypesAndClosedBusinesses(t *testing.T) {
	closedPlace := place("p-closed", "Shut Gym", "1 A St, Toronto, ON, Canada")
	closedPlace.BusinessStatus = "CLOSED_PERMANENTLY"

	searcher := &fakeSearcher{byRegion: map[string][]Place{
		"South": {
			place("p-mall", "Mall Wall", "2 B St, Toronto, ON, Canada", "shopping_mall", "gym"),
			closedPlace,
			place("p-ok", "Real Gym", "3 C St, Toronto, ON, Canada", "gym"),
		},
	}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth))

	results, err := syncer.Sync(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results.NewGymCandidates, 1)
	assert.Equal(t, "p-ok", results.NewGymCandidates[0].PlaceID)
}

func TestSync_FiltersKnownFalsePositives(t *testing.T) {
	searcher := &fakeSearcher{byRegion: map[string][]Place{
		"South": {
			// The Monkey Vault, a manually excluded parkour center.
			place("ChIJe6_Bf6M2K4gRKcR0l3fW8n8", "The Monkey Vault", "1 D St, Toronto, ON, Canada"),
		},
	}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth))

	results, err := syncer.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results.NewGymCandidates)
}

func TestSync_DeduplicatesOverlappingRegions(t *testing.T) {
	shared := place("p-dup", "Border Gym", "5 E St, Kingston, ON, Canada", "gym")
	searcher := &fakeSearcher{byRegion: map[string][]Place{
		"South": {shared},
		"East":  {shared},
	}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth, regionEast))

	results, err := syncer.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, results.NewGymCandidates, 1)
	assert.Equal(t, 2, results.APICallsMade)
}

func TestSync_RegionFailureIsSkipped(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth, regionEast))

	results, err := syncer.Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, results.APICallsMade)
	assert.Len(t, searcher.calls, 2, "remaining regions still searched")
}

func TestSync_GymWithoutPlaceIDNeverMarkedClosed(t *testing.T) {
	searcher := &fakeSearcher{byRegion: map[string][]Place{}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth))

	existing := []model.GymRecord{
		{GymID: "1", Name: "Legacy Gym"},
	}
	results, err := syncer.Sync(context.Background(), existing)
	require.NoError(t, err)
	assert.Empty(t, results.PotentiallyClosed)
}

func TestExtractCity(t *testing.T) {
	assert.Equal(t, "Toronto", ExtractCity("123 Main St, Toronto, ON M5V 1A1, Canada"))
	assert.Equal(t, "Sudbury", ExtractCity("5 Elm St,Sudbury, ON, Canada"))
	assert.Equal(t, "Unknown", ExtractCity("just-a-street"))
	assert.Equal(t, "Unknown", ExtractCity(""))
}

func TestMapsURL(t *testing.T) {
	assert.Equal(t,
		"https://www.google.com/maps/place/?q=place_id:abc123",
		MapsURL("abc123"))
}

func TestSaveResults(t *testing.T) {
	searcher := &fakeSearcher{byRegion: map[string][]Place{
		"South": {place("p-new", "Fresh Crag", "9 Side Rd, Toronto, ON, Canada", "gym")},
	}}
	syncer := NewSyncer(searcher, testPlacesConfig(regionSouth))

	results, err := syncer.Sync(context.Background(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "sync-results.json")
	require.NoError(t, SaveResults(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded model.SyncResults
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Len(t, loaded.NewGymCandidates, 1)
	assert.Equal(t, "Fresh Crag", loaded.NewGymCandidates[0].Name)
}

func TestPrintResults(t *testing.T) {
	results := &model.SyncResults{
		NewGymCandidates: []model.GymCandidate{
			{PlaceID: "p1", Name: "Fresh Crag", Address: "9 Side Rd, Toronto", City: "Toronto", MapsURL: MapsURL("p1")},
		},
		PotentiallyClosed: []model.ClosedGym{
			{GymID: "2", Name: "Gone Gym", PlaceID: "p2", City: "Ottawa"},
		},
		ExistingGymsCount: 5,
		APICallsMade:      4,
	}

	var buf bytes.Buffer
	PrintResults(&buf, results)
	out := buf.String()

	assert.Contains(t, out, "Existing gyms in store: 5")
	assert.Contains(t, out, "Candidates (1):")
	assert.Contains(t, out, "Fresh Crag")
	assert.Contains(t, out, "Potentially closed (1):")
	assert.Contains(t, out, "Gone Gym")
}
