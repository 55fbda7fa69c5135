package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// TransportVerifier classifies the first image with /verify_public_transport.
type TransportVerifier struct {
	client *Client
}

func NewTransportVerifier(client *Client) *TransportVerifier {
	return &TransportVerifier{client: client}
}

type transportResponse struct {
	PredictedClass   *string            `json:"predicted_class"`
	Confidence       *float64           `json:"confidence"`
	AllProbabilities map[string]float64 `json:"all_probabilities"`
	IsValid          bool               `json:"is_valid"`
}

func (v *TransportVerifier) Verify(ctx context.Context, ev Evidence) (*Verdict, error) {
	images := ev.Images()
	if len(images) == 0 {
		return nil, unavailable("transport", errors.New("need at least one image"))
	}

	part, err := v.client.download(ctx, images[0], "image")
	if err != nil {
		return nil, unavailable("transport", err)
	}
	body, err := v.client.postMultipart(ctx, "/verify_public_transport", []filePart{part})
	if err != nil {
		return nil, unavailable("transport", err)
	}

	var resp transportResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable("transport", fmt.Errorf("decode response: %w", err))
	}
	if resp.PredictedClass == nil || *resp.PredictedClass == "" || resp.Confidence == nil {
		return nil, unavailable("transport", errors.New("response is missing predicted_class or confidence"))
	}
	if !validConfidence(*resp.Confidence) {
		return nil, unavailable("transport", fmt.Errorf("confidence %v outside [0,1]", *resp.Confidence))
	}

	return &Verdict{
		Valid:          resp.IsValid,
		Confidence:     *resp.Confidence,
		PredictedClass: *resp.PredictedClass,
		Raw:            body,
	}, nil
}
