package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/repository"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/types"
)

const MinDescriptionLength = 40

// Enqueuer schedules background verification of a stored record.
type Enqueuer interface {
	Enqueue(id string)
}

type EvidenceInput struct {
	URI  string `json:"uri" binding:"required,uri"`
	Type string `json:"type"`
}

type LocationInput struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type SubmitInput struct {
	OwnerID     string              `json:"-"`
	Category    string              `json:"category" binding:"required"`
	Description string              `json:"description"`
	Evidence    []EvidenceInput     `json:"evidence" binding:"omitempty,dive"`
	Location    *LocationInput      `json:"location"`
	Coordinates []models.Coordinate `json:"coordinates"`
}

type ActivityService struct {
	logs       *repository.ActivityRepository
	policies   *types.PolicyTable
	dispatcher Enqueuer
	log        *logger.Logger
	now        func() time.Time
}

func NewActivityService(logs *repository.ActivityRepository, policies *types.PolicyTable, dispatcher Enqueuer, log *logger.Logger) *ActivityService {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityService{
		logs:       logs,
		policies:   policies,
		dispatcher: dispatcher,
		log:        log.With("service", "ActivityService"),
		now:        time.Now,
	}
}

// Submit validates and stores a Pending record, then hands it to background verification.
// Evidence shape is not checked here; the decision engine routes mismatches to manual review.
func (s *ActivityService) Submit(ctx context.Context, in SubmitInput) (*models.ActivityLog, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, apperr.Unauthorized("missing user identity")
	}
	in.Category = strings.TrimSpace(in.Category)
	in.Evidence = append([]EvidenceInput(nil), in.Evidence...)
	for i := range in.Evidence {
		in.Evidence[i].URI = strings.TrimSpace(in.Evidence[i].URI)
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	category := in.Category
	// Counted in runes after trimming.
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return nil, apperr.Validation("description must be at least %d characters", MinDescriptionLength)
	}

	evidence := make([]models.Evidence, 0, len(in.Evidence))
	for i, e := range in.Evidence {
		mt, err := mediaType(e.Type, e.URI)
		if err != nil {
			return nil, apperr.Validation("evidence[%d]: %v", i, err)
		}
		evidence = append(evidence, models.Evidence{URI: e.URI, Type: mt})
	}

	rec := &models.ActivityLog{
		ID:                 uuid.NewString(),
		OwnerID:            in.OwnerID,
		Category:           category,
		Description:        description,
		Evidence:           evidence,
		Coordinates:        in.Coordinates,
		Status:             models.StatusPending,
		VerificationSource: models.SourceNone,
		SubmittedAt:        s.now().UTC(),
	}
	if in.Location != nil {
		lat, lon := in.Location.Latitude, in.Location.Longitude
		rec.Latitude, rec.Longitude = &lat, &lon
	}

	policy, err := s.policies.Lookup(category)
	if err != nil {
		s.log.Warn("submission with unknown category", "category", category, "owner_id", in.OwnerID)
	}
	rec.MaxPoints = policy.MaxPoints

	if err := s.logs.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info("activity submitted", "record_id", rec.ID, "owner_id", rec.OwnerID, "category", rec.Category)

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(rec.ID)
	}
	return rec, nil
}

// ResumePending re-enqueues records left Pending by a crash or restart.
func (s *ActivityService) ResumePending(ctx context.Context) (int, error) {
	if s.dispatcher == nil {
		return 0, nil
	}
	pending, err := s.logs.ListByStatuses(ctx, models.StatusPending)
	if err != nil {
		return 0, err
	}
	for _, rec := range pending {
		s.dispatcher.Enqueue(rec.ID)
	}
	if len(pending) > 0 {
		s.log.Info("resumed pending verifications", "count", len(pending))
	}
	return len(pending), nil
}

func (s *ActivityService) ListOwn(ctx context.Context, ownerID string) ([]models.ActivityLog, error) {
	return s.logs.ListByOwner(ctx, ownerID)
}

func (s *ActivityService) Categories() []types.CategoryPolicy {
	return s.policies.Policies()
}

func mediaType(declared, uri string) (models.MediaType, error) {
	switch models.MediaType(strings.ToLower(strings.TrimSpace(declared))) {
	case models.MediaImage:
		return models.MediaImage, nil
	case models.MediaVideo:
		return models.MediaVideo, nil
	case "":
		if mt, ok := InferMediaType(uri); ok {
			return mt, nil
		}
		return "", fmt.Errorf("cannot tell whether %s is an image or a video", uri)
	default:
		return "", errors.New("type must be image or video")
	}
}
