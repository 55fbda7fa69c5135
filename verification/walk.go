package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/types"
)

// WalkVerifier checks a GPS trace against the /verify_walk endpoint.
type WalkVerifier struct {
	client *Client
}

func NewWalkVerifier(client *Client) *WalkVerifier {
	return &WalkVerifier{client: client}
}

type walkRequest struct {
	Coordinates []models.Coordinate `json:"coordinates"`
}

type walkResponse struct {
	TotalDistanceKm *float64 `json:"total_distance_km"`
	WalkValid       *bool    `json:"walk_valid"`
}

type walkAudit struct {
	Service         json.RawMessage `json:"service"`
	LocalDistanceKm float64         `json:"local_distance_km"`
}

func (v *WalkVerifier) Verify(ctx context.Context, ev Evidence) (*Verdict, error) {
	if len(ev.Coordinates) < 2 {
		return nil, unavailable("walk", fmt.Errorf("need at least 2 GPS points, got %d", len(ev.Coordinates)))
	}
	lats := make([]float64, 0, len(ev.Coordinates))
	lons := make([]float64, 0, len(ev.Coordinates))
	for i, c := range ev.Coordinates {
		if !types.ValidCoordinate(c.Lat, c.Lon) {
			return nil, unavailable("walk", fmt.Errorf("coordinate %d out of range", i))
		}
		lats = append(lats, c.Lat)
		lons = append(lons, c.Lon)
	}

	body, err := v.client.postJSON(ctx, "/verify_walk", walkRequest{Coordinates: ev.Coordinates})
	if err != nil {
		return nil, unavailable("walk", err)
	}

	var resp walkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable("walk", fmt.Errorf("decode response: %w", err))
	}
	if resp.TotalDistanceKm == nil || resp.WalkValid == nil {
		return nil, unavailable("walk", errors.New("response is missing total_distance_km or walk_valid"))
	}

	raw, _ := json.Marshal(walkAudit{Service: body, LocalDistanceKm: types.TraceDistance(lats, lons)})
	return &Verdict{
		Valid:      *resp.WalkValid,
		DistanceKm: *resp.TotalDistanceKm,
		Raw:        raw,
	}, nil
}
