package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/events"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/types"
)

const DefaultTimeout = 30 * time.Second

// ErrAlreadyDecided is returned by Verify when the record left Pending before the
// engine could write its disposition (an admin got there first).
var ErrAlreadyDecided = errors.New("record already decided")

// RecordStore is the slice of the activity store the engine needs.
type RecordStore interface {
	Get(ctx context.Context, id string) (*models.ActivityLog, error)
	// ApplyDecision writes d only while the record is still Pending and reports whether it did.
	ApplyDecision(ctx context.Context, id string, d models.Disposition) (bool, error)
}

type Engine struct {
	policies  *types.PolicyTable
	verifiers map[types.VerifierKind]Verifier
	store     RecordStore
	publisher events.Publisher
	log       *logger.Logger
	timeout   time.Duration
}

type EngineOption func(*Engine)

func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithPublisher(p events.Publisher) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine fails if the policy table names a verifier kind with no registered adapter.
func NewEngine(policies *types.PolicyTable, verifiers map[types.VerifierKind]Verifier, store RecordStore, opts ...EngineOption) (*Engine, error) {
	if policies == nil {
		return nil, errors.New("policy table required")
	}
	if store == nil {
		return nil, errors.New("record store required")
	}
	for _, kind := range policies.VerifierKinds() {
		if verifiers[kind] == nil {
			return nil, fmt.Errorf("no verifier registered for %q", kind)
		}
	}

	e := &Engine{
		policies:  policies,
		verifiers: verifiers,
		store:     store,
		publisher: events.NewNopPublisher(),
		log:       logger.Nop(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "DecisionEngine")
	return e, nil
}

// DefaultVerifiers binds every adapter kind to the inference service behind client.
func DefaultVerifiers(client *Client) map[types.VerifierKind]Verifier {
	return map[types.VerifierKind]Verifier{
		types.VerifierNone:      NullVerifier{},
		types.VerifierWalk:      NewWalkVerifier(client),
		types.VerifierPlanting:  NewPlantingVerifier(client),
		types.VerifierTransport: NewTransportVerifier(client),
		types.VerifierCleanup:   NewCleanupVerifier(client),
	}
}

// Verify loads the record, decides it and persists the disposition.
func (e *Engine) Verify(ctx context.Context, id string) (models.Disposition, error) {
	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return models.Disposition{}, fmt.Errorf("load record %s: %w", id, err)
	}
	if rec.Status != models.StatusPending {
		return models.Disposition{}, ErrAlreadyDecided
	}

	d := e.Decide(ctx, rec)
	applied, err := e.store.ApplyDecision(ctx, id, d)
	if err != nil {
		return d, fmt.Errorf("persist disposition for %s: %w", id, err)
	}
	if !applied {
		e.log.Info("record decided elsewhere, dropping engine disposition", "record_id", id)
		return d, ErrAlreadyDecided
	}

	e.log.Info("activity verified",
		"record_id", id,
		"category", rec.Category,
		"status", d.Status,
		"source", d.Source,
		"confidence", d.ConfidenceScore,
		"points", d.AwardedPoints,
	)
	e.publish(rec, d)
	return d, nil
}

// Fallback parks a still-pending record in manual review after a failed verification run.
func (e *Engine) Fallback(ctx context.Context, id string, cause error) error {
	d := manualReview(models.SourceNone, nil, failureOutput(cause))
	applied, err := e.store.ApplyDecision(ctx, id, d)
	if err != nil {
		return fmt.Errorf("fallback to manual review for %s: %w", id, err)
	}
	if applied {
		e.log.Warn("verification failed, record moved to manual review", "record_id", id, "error", cause)
		if rec, err := e.store.Get(ctx, id); err == nil {
			e.publish(rec, d)
		}
	}
	return nil
}

// Decide computes the disposition for rec without persisting anything. It never fails:
// every verifier problem becomes a manual-review disposition.
func (e *Engine) Decide(ctx context.Context, rec *models.ActivityLog) models.Disposition {
	policy, err := e.policies.Lookup(rec.Category)
	if err != nil {
		e.log.Warn("unknown category routed to manual review", "record_id", rec.ID, "category", rec.Category)
	}

	switch policy.Decision {
	case types.DecisionCatchAll:
		return manualReview(models.SourceNone, nil, nil)
	case types.DecisionFixed:
		// Watering-style categories approve on submission alone; there is no evidence gate.
		return approved(rec.MaxPoints, rec.MaxPoints, policy.ValidConfidence, models.SourceGeo, nil)
	}

	ev := Evidence{Media: rec.Evidence, Coordinates: rec.Coordinates}
	if policy.Verifier != types.VerifierNone {
		if err := policy.Evidence.Check(len(ev.Images()), len(ev.Videos()), len(ev.Coordinates)); err != nil {
			e.log.Warn("evidence shape mismatch, deferring to manual review", "record_id", rec.ID, "error", err)
			return manualReview(models.SourceNone, nil, failureOutput(err))
		}
	}

	verdict, err := e.invoke(ctx, policy.Verifier, ev)
	if err != nil {
		if !errors.Is(err, ErrManualReviewOnly) {
			e.log.Warn("verifier unavailable, deferring to manual review", "record_id", rec.ID, "verifier", policy.Verifier, "error", err)
		}
		return manualReview(models.SourceNone, nil, failureOutput(err))
	}

	output := datatypes.JSON(verdict.Raw)
	source := sourceFor(policy.Verifier)

	switch policy.Decision {
	case types.DecisionBinary:
		if verdict.Valid {
			return approved(rec.MaxPoints, pointsFor(rec.MaxPoints, policy.ValidConfidence), policy.ValidConfidence, source, output)
		}
		return rejected(policy.InvalidConfidence, source, output)
	case types.DecisionBanded:
		conf := verdict.Confidence
		for _, class := range policy.RejectClasses {
			if verdict.PredictedClass == class {
				return rejected(conf, source, output)
			}
		}
		switch {
		case conf >= policy.ApproveAt:
			return approved(rec.MaxPoints, pointsFor(rec.MaxPoints, conf), conf, source, output)
		case conf >= policy.ReviewAt:
			return manualReview(source, &conf, output)
		default:
			return rejected(conf, source, output)
		}
	}

	e.log.Error("policy has no decision rule for verdict", "record_id", rec.ID, "decision", policy.Decision)
	return manualReview(models.SourceNone, nil, output)
}

func (e *Engine) invoke(ctx context.Context, kind types.VerifierKind, ev Evidence) (*Verdict, error) {
	v, ok := e.verifiers[kind]
	if !ok || v == nil {
		return nil, unavailable(string(kind), errors.New("no adapter registered"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		verdict *Verdict
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: unavailable(string(kind), fmt.Errorf("panic: %v", r))}
			}
		}()
		verdict, err := v.Verify(ctx, ev)
		ch <- result{verdict: verdict, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.verdict == nil {
			return nil, unavailable(string(kind), errors.New("empty verdict"))
		}
		return r.verdict, nil
	case <-ctx.Done():
		return nil, unavailable(string(kind), ctx.Err())
	}
}

func (e *Engine) publish(rec *models.ActivityLog, d models.Disposition) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev := events.FromRecord(rec)
	ev.Status = d.Status
	ev.AwardedPoints = d.AwardedPoints
	ev.Source = d.Source
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.log.Warn("publish disposition failed", "record_id", rec.ID, "error", err)
	}
}

func sourceFor(kind types.VerifierKind) models.Source {
	switch kind {
	case types.VerifierWalk, types.VerifierFixedGeo:
		return models.SourceGeo
	default:
		return models.SourceML
	}
}

// pointsFor scales the ceiling by confidence and clamps into [0, maxPoints].
func pointsFor(maxPoints int, confidence float64) int {
	p := int(math.Round(float64(maxPoints) * confidence))
	if p < 0 {
		return 0
	}
	if p > maxPoints {
		return maxPoints
	}
	return p
}

func approved(maxPoints, points int, confidence float64, source models.Source, output datatypes.JSON) models.Disposition {
	if points > maxPoints {
		points = maxPoints
	}
	return models.Disposition{
		Status:          models.StatusApproved,
		ConfidenceScore: &confidence,
		AwardedPoints:   points,
		Source:          source,
		VerifierOutput:  output,
	}
}

func rejected(confidence float64, source models.Source, output datatypes.JSON) models.Disposition {
	return models.Disposition{
		Status:          models.StatusRejected,
		ConfidenceScore: &confidence,
		AwardedPoints:   0,
		Source:          source,
		VerifierOutput:  output,
	}
}

func manualReview(source models.Source, confidence *float64, output datatypes.JSON) models.Disposition {
	return models.Disposition{
		Status:          models.StatusManualReview,
		ConfidenceScore: confidence,
		AwardedPoints:   0,
		Source:          source,
		VerifierOutput:  output,
	}
}

func failureOutput(err error) datatypes.JSON {
	if err == nil {
		return nil
	}
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return raw
}
