package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CleanupVerifier compares the before/after image pair with /verify_cleanup.
// The first image is "before", the second "after".
type CleanupVerifier struct {
	client *Client
}

func NewCleanupVerifier(client *Client) *CleanupVerifier {
	return &CleanupVerifier{client: client}
}

type cleanupResponse struct {
	IsValid    *bool           `json:"is_valid"`
	Confidence *float64        `json:"confidence"`
	Reason     string          `json:"reason"`
	Details    json.RawMessage `json:"details"`
}

func (v *CleanupVerifier) Verify(ctx context.Context, ev Evidence) (*Verdict, error) {
	images := ev.Images()
	if len(images) < 2 {
		return nil, unavailable("cleanup", fmt.Errorf("need before and after images, got %d", len(images)))
	}

	before, err := v.client.download(ctx, images[0], "before")
	if err != nil {
		return nil, unavailable("cleanup", err)
	}
	after, err := v.client.download(ctx, images[1], "after")
	if err != nil {
		return nil, unavailable("cleanup", err)
	}
	body, err := v.client.postMultipart(ctx, "/verify_cleanup", []filePart{before, after})
	if err != nil {
		return nil, unavailable("cleanup", err)
	}

	var resp cleanupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable("cleanup", fmt.Errorf("decode response: %w", err))
	}
	if resp.IsValid == nil || resp.Confidence == nil {
		return nil, unavailable("cleanup", errors.New("response is missing is_valid or confidence"))
	}
	if !validConfidence(*resp.Confidence) {
		return nil, unavailable("cleanup", fmt.Errorf("confidence %v outside [0,1]", *resp.Confidence))
	}

	return &Verdict{
		Valid:      *resp.IsValid,
		Confidence: *resp.Confidence,
		Reason:     resp.Reason,
		Raw:        body,
	}, nil
}
