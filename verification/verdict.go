package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

var (
	// ErrVerifierUnavailable covers every way an adapter can fail to produce a verdict.
	// The engine maps it to manual review, never to rejection.
	ErrVerifierUnavailable = errors.New("verifier unavailable")
	// ErrManualReviewOnly is returned by the null adapter.
	ErrManualReviewOnly = fmt.Errorf("%w: no automated verification for this category", ErrVerifierUnavailable)
)

type UnavailableError struct {
	Verifier string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s verifier unavailable: %v", e.Verifier, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrVerifierUnavailable }

func unavailable(verifier string, err error) error {
	return &UnavailableError{Verifier: verifier, Err: err}
}

// Evidence is the verifier-facing view of a submission.
type Evidence struct {
	Media       []models.Evidence
	Coordinates []models.Coordinate
}

func (e Evidence) Images() []models.Evidence { return e.ofType(models.MediaImage) }
func (e Evidence) Videos() []models.Evidence { return e.ofType(models.MediaVideo) }

func (e Evidence) ofType(t models.MediaType) []models.Evidence {
	var out []models.Evidence
	for _, m := range e.Media {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Verdict is the normalized result of one adapter call.
type Verdict struct {
	Valid          bool
	Confidence     float64
	PredictedClass string
	DistanceKm     float64
	Reason         string
	Raw            json.RawMessage
}

type Verifier interface {
	Verify(ctx context.Context, ev Evidence) (*Verdict, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, ev Evidence) (*Verdict, error)

func (f VerifierFunc) Verify(ctx context.Context, ev Evidence) (*Verdict, error) {
	return f(ctx, ev)
}

// NullVerifier backs categories that have no automated path.
type NullVerifier struct{}

func (NullVerifier) Verify(context.Context, Evidence) (*Verdict, error) {
	return nil, ErrManualReviewOnly
}
