package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crux-labs/pricewatch/internal/config"
	"github.com/crux-labs/pricewatch/internal/model"
)

// excludedPlaceIDs are manually verified false positives: places the text
// search returns that are not climbing gyms.
var excludedPlaceIDs = map[string]bool{
	"ChIJS2aUuO_L1IkR8BST_gorVE8": true, // altitude training facility
	"ChIJidpEJz7L1IkR95dPoBIlBGI": true, // community center
	"ChIJe6_Bf6M2K4gRKcR0l3fW8n8": true, // parkour center
	"ChIJTws7NUvL1IkRswhEXvIkzdc": true, // university recreation
	"ChIJF6C1nGvyLogRyZTu0tYZSh4": true, // ninja/obstacle course
	"ChIJ__8_UxnyLogRhB0jW3DjTl8": true, // community center
	"ChIJJVygnUD5LogR3YTNCHcWrls": true, // community centre YMCA
	"ChIJ6-UlHqbxLogRzcE-39l39rs": true, // regular fitness gym
	"ChIJc0SI_oUFzkwRb-m9r_BQh48": true, // wellness studio
	"ChIJJS1VFc8AzkwRjk4NzvKsgdc": true, // obstacle course racing
	"ChIJ15foAAoFzkwRrz5HrnxykXA": true, // university sports complex
	"ChIJocUcG7AFzkwRUt6bVcQNGAY": true, // community center YMCA
	"ChIJKfw_qAMEzkwRrHMWc6BPNc8": true, // gymnastics
	"ChIJ-2hKpbIGzkwRzYw_ba5E8yM": true, // recreation centre
	"ChIJI6cK33QPzkwRqPVicerN1gA": true, // tumbling/gymnastics
	"ChIJsRkRmigFzkwRF5XJNqacIE0": true, // personal training
	"ChIJux5b2aL_zUwRJepN2Hoxz4U": true, // gymnastics
	"ChIJp1aTPYb_0UwRzsoyZLcb54Q": true, // city rec complex
	"ChIJfYIclcBvK4gRrzlbhUTD3lU": true, // climbing wall manufacturer
}

// excludedTypes mark places that are obviously not climbing gyms.
var excludedTypes = map[string]bool{
	"park":             true,
	"store":            true,
	"university":       true,
	"school":           true,
	"shopping_mall":    true,
	"library":          true,
	"museum":           true,
	"community_center": true,
	"playground":       true,
	"amusement_center": true,
	"hotel":            true,
	"lodging":          true,
	"bowling_alley":    true,
	"spa":              true,
	"sauna":            true,
	"massage":          true,
	"video_arcade":     true,
	"ice_skating_rink": true,
	"arena":            true,
	"roller_coaster":   true,
}

const closedPermanently = "CLOSED_PERMANENTLY"

// Searcher is the region-search seam; *PlacesClient satisfies it.
type Searcher interface {
	SearchRegion(ctx context.Context, query string, region config.SearchRegion) ([]Place, error)
}

// Syncer runs the discovery sync over a set of search regions.
type Syncer struct {
	searcher Searcher
	query    string
	regions  []config.SearchRegion
}

// NewSyncer creates a Syncer using the configured query and regions.
func NewSyncer(searcher Searcher, cfg config.PlacesConfig) *Syncer {
	return &Syncer{
		searcher: searcher,
		query:    cfg.SearchQuery,
		regions:  cfg.Regions,
	}
}

// Sync searches every region and diffs the results against the stored
// gyms, producing new-gym candidates and potentially-closed records. A
// region whose search fails is logged and skipped; its gyms may show up as
// potentially closed, which the artifact reader has to weigh.
func (s *Syncer) Sync(ctx context.Context, existing []model.GymRecord) (*model.SyncResults, error) {
	byPlaceID := make(map[string]model.GymRecord, len(existing))
	for _, gym := range existing {
		if gym.PlaceID != "" {
			byPlaceID[gym.PlaceID] = gym
		}
	}

	found := make(map[string]bool)
	seen := make(map[string]bool)
	candidates := []model.GymCandidate{}
	apiCalls := 0

	for _, region := range s.regions {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "discovery: sync")
		}

		places, err := s.searcher.SearchRegion(ctx, s.query, region)
		if err != nil {
			zap.L().Warn("discovery: region search failed",
				zap.String("region", region.Name), zap.Error(err))
			continue
		}
		apiCalls++
		zap.L().Info("discovery: region searched",
			zap.String("region", region.Name), zap.Int("results", len(places)))

		for _, place := range places {
			found[place.ID] = true

			if _, ok := byPlaceID[place.ID]; ok {
				continue
			}
			if excludedPlaceIDs[place.ID] {
				continue
			}
			if place.BusinessStatus == closedPermanently {
				continue
			}
			// Regions overlap, so the same place can come back twice.
			if seen[place.ID] {
				continue
			}
			if hasExcludedType(place.Types) {
				continue
			}

			seen[place.ID] = true
			mapsURL := place.GoogleMapsURI
			if mapsURL == "" {
				mapsURL = MapsURL(place.ID)
			}
			candidates = append(candidates, model.GymCandidate{
				PlaceID:    place.ID,
				Name:       place.DisplayName.Text,
				Address:    place.FormattedAddress,
				City:       ExtractCity(place.FormattedAddress),
				Latitude:   place.Location.Latitude,
				Longitude:  place.Location.Longitude,
				WebsiteURL: place.WebsiteURI,
				MapsURL:    mapsURL,
				Types:      place.Types,
			})
		}
	}

	closed := []model.ClosedGym{}
	for _, gym := range existing {
		if gym.PlaceID == "" {
			continue
		}
		if !found[gym.PlaceID] {
			closed = append(closed, model.ClosedGym{
				GymID:   gym.GymID,
				Name:    gym.Name,
				PlaceID: gym.PlaceID,
				Address: gym.Address,
				City:    gym.City,
			})
		}
	}

	return &model.SyncResults{
		Timestamp:         time.Now().UTC(),
		NewGymCandidates:  candidates,
		PotentiallyClosed: closed,
		ExistingGymsCount: len(existing),
		APICallsMade:      apiCalls,
	}, nil
}

func hasExcludedType(types []string) bool {
	for _, t := range types {
		if excludedTypes[t] {
			return true
		}
	}
	return false
}

// PrintResults renders the sync artifact for the console.
func PrintResults(w io.Writer, results *model.SyncResults) {
	fmt.Fprintf(w, "Existing gyms in store: %d\n", results.ExistingGymsCount)
	fmt.Fprintf(w, "API calls made: %d\n", results.APICallsMade)

	fmt.Fprintf(w, "\nCandidates (%d):\n", len(results.NewGymCandidates))
	if len(results.NewGymCandidates) == 0 {
		fmt.Fprintln(w, "  none found")
	}
	for i, c := range results.NewGymCandidates {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, c.Name)
		fmt.Fprintf(w, "   Address: %s\n", c.Address)
		fmt.Fprintf(w, "   City: %s\n", c.City)
		fmt.Fprintf(w, "   Types: %s\n", strings.Join(c.Types, ", "))
		fmt.Fprintf(w, "   Place ID: %s\n", c.PlaceID)
		if c.WebsiteURL != "" {
			fmt.Fprintf(w, "   Website: %s\n", c.WebsiteURL)
		}
		fmt.Fprintf(w, "   Maps: %s\n", c.MapsURL)
	}

	fmt.Fprintf(w, "\nPotentially closed (%d):\n", len(results.PotentiallyClosed))
	if len(results.PotentiallyClosed) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for i, g := range results.PotentiallyClosed {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, g.Name)
		fmt.Fprintf(w, "   Address: %s\n", g.Address)
		fmt.Fprintf(w, "   City: %s\n", g.City)
		fmt.Fprintf(w, "   Place ID: %s\n", g.PlaceID)
	}
}

// SaveResults writes the sync artifact as indented JSON.
func SaveResults(results *model.SyncResults, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "discovery: create output dir")
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return eris.Wrap(err, "discovery: marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "discovery: write results")
	}
	return nil
}
