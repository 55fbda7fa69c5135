package services

import (
	"context"
	"time"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/events"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/repository"
)

var openStatuses = []models.Status{models.StatusPending, models.StatusManualReview}

// ReviewService backs the manual review queue and admin record actions.
type ReviewService struct {
	logs       *repository.ActivityRepository
	publisher  events.Publisher
	log        *logger.Logger
	allowBonus bool
}

// NewReviewService builds the service. allowBonus lets EditPoints exceed a record's maxPoints.
func NewReviewService(logs *repository.ActivityRepository, publisher events.Publisher, log *logger.Logger, allowBonus bool) *ReviewService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewService{
		logs:       logs,
		publisher:  publisher,
		log:        log.With("service", "ReviewService"),
		allowBonus: allowBonus,
	}
}

// ListPending returns Pending and Manual_Review records, newest first.
func (s *ReviewService) ListPending(ctx context.Context) ([]models.ActivityLog, error) {
	return s.logs.ListByStatuses(ctx, openStatuses...)
}

func (s *ReviewService) CountPending(ctx context.Context) (int64, error) {
	return s.logs.CountByStatuses(ctx, openStatuses...)
}

func (s *ReviewService) Approve(ctx context.Context, id string) (*models.ActivityLog, error) {
	return s.decide(ctx, id, models.StatusApproved)
}

func (s *ReviewService) Reject(ctx context.Context, id string) (*models.ActivityLog, error) {
	return s.decide(ctx, id, models.StatusRejected)
}

// SetStatus accepts only the two terminal statuses an admin can choose.
func (s *ReviewService) SetStatus(ctx context.Context, id string, status string) (*models.ActivityLog, error) {
	switch models.Status(status) {
	case models.StatusApproved:
		return s.Approve(ctx, id)
	case models.StatusRejected:
		return s.Reject(ctx, id)
	default:
		return nil, apperr.InvalidStatus("status must be %s or %s", models.StatusApproved, models.StatusRejected)
	}
}

func (s *ReviewService) decide(ctx context.Context, id string, target models.Status) (*models.ActivityLog, error) {
	rec, err := s.logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.Open() && rec.Status != target {
		return nil, apperr.Conflict("activity log %s is already %s", id, rec.Status)
	}

	points := 0
	if target == models.StatusApproved {
		points = rec.MaxPoints
	}
	d := models.Disposition{
		Status:          target,
		ConfidenceScore: rec.ConfidenceScore,
		AwardedPoints:   points,
		Source:          models.SourceManual,
		VerifierOutput:  rec.VerifierOutput,
	}

	// The status guard also covers an engine write landing between the read and this update.
	applied, err := s.logs.SetAdminDisposition(ctx, id, d, models.StatusPending, models.StatusManualReview, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.logs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("activity log %s is already %s", id, current.Status)
	}

	rec.Status = d.Status
	rec.AwardedPoints = d.AwardedPoints
	rec.VerificationSource = d.Source
	rec.UpdatedAt = time.Now().UTC()

	s.log.Info("admin decision", "record_id", id, "status", target, "points", points)
	s.publish(ctx, rec)
	return rec, nil
}

// EditPoints overrides awarded points without touching the status.
func (s *ReviewService) EditPoints(ctx context.Context, id string, points int) (*models.ActivityLog, error) {
	if points < 0 {
		return nil, apperr.Validation("points must not be negative")
	}
	rec, err := s.logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if points > rec.MaxPoints && !s.allowBonus {
		return nil, apperr.Validation("points must not exceed %d for %s (bonus points are disabled)", rec.MaxPoints, rec.Category)
	}
	if rec.Status == models.StatusRejected && points != 0 {
		return nil, apperr.Conflict("activity log %s is rejected; approve it before awarding points", id)
	}

	applied, err := s.logs.UpdatePoints(ctx, id, points)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.logs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("activity log %s is already %s", id, current.Status)
	}
	// The engine may have settled the record since the first read.
	if rec, err = s.logs.Get(ctx, id); err != nil {
		return nil, err
	}

	s.log.Info("admin edited points", "record_id", id, "points", points)
	s.publish(ctx, rec)
	return rec, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := s.logs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("admin deleted activity log", "record_id", id)
	return nil
}

func (s *ReviewService) publish(ctx context.Context, rec *models.ActivityLog) {
	if err := s.publisher.Publish(ctx, events.FromRecord(rec)); err != nil {
		s.log.Warn("publish disposition failed", "record_id", rec.ID, "error", err)
	}
}
