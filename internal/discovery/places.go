// Package discovery finds gyms the store does not know about yet, and
// stored gyms that may have closed, by comparing store contents against
// Places text-search results. It is report-only: the store is never
// written.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"github.com/crux-labs/pricewatch/internal/config"
)

const searchFieldMask = "places.id,places.displayName,places.formattedAddress," +
	"places.location,places.websiteUri,places.googleMapsUri," +
	"places.businessStatus,places.types,nextPageToken"

// maxSearchPages caps pagination at 60 results per region.
const maxSearchPages = 3

const pageDelay = 200 * time.Millisecond

// Place is one result from the text-search endpoint.
type Place struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text         string `json:"text"`
		LanguageCode string `json:"languageCode"`
	} `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
	Location         struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	WebsiteURI     string   `json:"websiteUri,omitempty"`
	GoogleMapsURI  string   `json:"googleMapsUri,omitempty"`
	BusinessStatus string   `json:"businessStatus,omitempty"`
	Types          []string `json:"types,omitempty"`
}

type textSearchRequest struct {
	TextQuery    string        `json:"textQuery"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
	PageToken    string        `json:"pageToken,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type textSearchResponse struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"nextPageToken"`
}

// PlacesClient talks to the Places text-search API.
type PlacesClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewPlacesClient creates a client for the given API endpoint and key.
func NewPlacesClient(cfg config.PlacesConfig) *PlacesClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	return &PlacesClient{
		client:  client,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// SearchRegion runs a paginated text search biased to the region's circle,
// following nextPageToken for up to three pages.
func (c *PlacesClient) SearchRegion(ctx context.Context, query string, region config.SearchRegion) ([]Place, error) {
	var all []Place
	pageToken := ""

	for page := 0; page < maxSearchPages; page++ {
		req := textSearchRequest{
			TextQuery: query,
			LocationBias: &locationBias{Circle: circle{
				Center: latLng{Latitude: region.Latitude, Longitude: region.Longitude},
				Radius: region.RadiusMeters,
			}},
			PageToken: pageToken,
		}

		var body textSearchResponse
		res, err := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Goog-Api-Key", c.apiKey).
			SetHeader("X-Goog-FieldMask", searchFieldMask).
			SetBody(req).
			SetResult(&body).
			Post(c.baseURL + "/places:searchText")
		if err != nil {
			return nil, eris.Wrapf(err, "discovery: search %s", region.Name)
		}
		if res.IsError() {
			return nil, eris.New(fmt.Sprintf("discovery: search %s: status %d: %s",
				region.Name, res.StatusCode(), res.String()))
		}

		all = append(all, body.Places...)
		if body.NextPageToken == "" {
			break
		}
		pageToken = body.NextPageToken

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(pageDelay):
		}
	}

	return all, nil
}

// ExtractCity pulls the city out of a formatted address such as
// "123 Main St, Toronto, ON M5V 1A1, Canada".
func ExtractCity(address string) string {
	parts := splitTrim(address)
	if len(parts) >= 2 {
		return parts[1]
	}
	return "Unknown"
}

// MapsURL builds a Google Maps link for a place ID.
func MapsURL(placeID string) string {
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

func splitTrim(address string) []string {
	raw := strings.Split(address, ",")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
