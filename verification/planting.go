package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// PlantingVerifier forwards the single planting video to /verify_planting.
type PlantingVerifier struct {
	client *Client
}

func NewPlantingVerifier(client *Client) *PlantingVerifier {
	return &PlantingVerifier{client: client}
}

type plantingResponse struct {
	IsValid    *bool           `json:"is_valid"`
	Confidence *float64        `json:"confidence"`
	Evidence   json.RawMessage `json:"evidence"`
	Reason     string          `json:"reason"`
}

func (v *PlantingVerifier) Verify(ctx context.Context, ev Evidence) (*Verdict, error) {
	videos := ev.Videos()
	if len(videos) != 1 {
		return nil, unavailable("planting", fmt.Errorf("need exactly one video, got %d", len(videos)))
	}

	part, err := v.client.download(ctx, videos[0], "video")
	if err != nil {
		return nil, unavailable("planting", err)
	}
	body, err := v.client.postMultipart(ctx, "/verify_planting", []filePart{part})
	if err != nil {
		return nil, unavailable("planting", err)
	}

	var resp plantingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable("planting", fmt.Errorf("decode response: %w", err))
	}
	if resp.IsValid == nil || resp.Confidence == nil {
		return nil, unavailable("planting", errors.New("response is missing is_valid or confidence"))
	}
	if !validConfidence(*resp.Confidence) {
		return nil, unavailable("planting", fmt.Errorf("confidence %v outside [0,1]", *resp.Confidence))
	}

	return &Verdict{
		Valid:      *resp.IsValid,
		Confidence: *resp.Confidence,
		Reason:     resp.Reason,
		Raw:        body,
	}, nil
}
