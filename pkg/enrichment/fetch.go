package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wisbric/waypoint/internal/domain"
)

// overpassResponse is the subset of the Overpass API's JSON output the
// worker cares about: an element list of nodes/ways carrying tags and a
// position (nodes carry lat/lon directly; ways carry a center).
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassLatLon   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassLatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HTTPFetch builds a Fetch that queries an Overpass-style endpoint with an
// Overpass QL query restricted to the given bounding box (spec §4.5
// "Overpass-style external fetch").
func HTTPFetch(client *http.Client) Fetch {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, sourceURL string, bounds domain.BoundingBox) ([]domain.POI, error) {
		query := overpassQuery(bounds)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sourceURL, strings.NewReader("data="+query))
		if err != nil {
			return nil, &FetchError{Kind: FetchErrorConnection, Err: err}
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return nil, &FetchError{Kind: FetchErrorConnection, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, &FetchError{Kind: FetchErrorClient, Err: fmt.Errorf("overpass returned %d", resp.StatusCode)}
		}
		if resp.StatusCode >= 500 {
			return nil, &FetchError{Kind: FetchErrorServer, Err: fmt.Errorf("overpass returned %d", resp.StatusCode)}
		}

		var parsed overpassResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, &FetchError{Kind: FetchErrorServer, Err: fmt.Errorf("decoding overpass response: %w", err)}
		}

		return toPOIs(parsed), nil
	}
}

func overpassQuery(bounds domain.BoundingBox) string {
	return fmt.Sprintf(
		"[out:json];node[\"name\"](%f,%f,%f,%f);out;",
		bounds.MinLat, bounds.MinLng, bounds.MaxLat, bounds.MaxLng,
	)
}

func toPOIs(resp overpassResponse) []domain.POI {
	pois := make([]domain.POI, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		pois = append(pois, domain.POI{
			ID:       fmt.Sprintf("osm:%d", el.ID),
			Name:     domain.LocalizationMap{"en": name},
			Icon:     overpassIcon(el.Tags),
			Lat:      lat,
			Lng:      lng,
			Category: overpassCategory(el.Tags),
		})
	}
	return pois
}

func overpassCategory(tags map[string]string) string {
	for _, key := range []string{"amenity", "shop", "leisure", "tourism"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "other"
}

func overpassIcon(tags map[string]string) domain.IconIdentifier {
	return domain.IconIdentifier("poi:" + overpassCategory(tags))
}
