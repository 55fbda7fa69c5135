package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

// ActivityRepository is the activity record store.
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(ctx context.Context, rec *models.ActivityLog) error {
	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return apperr.Persistence("create activity log", err)
	}
	return nil
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (*models.ActivityLog, error) {
	var rec models.ActivityLog
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("activity log %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("load activity log", err)
	}
	return &rec, nil
}

// ApplyDecision writes an automated disposition only while the record is still Pending.
func (r *ActivityRepository) ApplyDecision(ctx context.Context, id string, d models.Disposition) (bool, error) {
	return r.updateDisposition(ctx, id, d, []models.Status{models.StatusPending})
}

// SetAdminDisposition writes d only while the record's status is one of from.
func (r *ActivityRepository) SetAdminDisposition(ctx context.Context, id string, d models.Disposition, from ...models.Status) (bool, error) {
	return r.updateDisposition(ctx, id, d, from)
}

func (r *ActivityRepository) updateDisposition(ctx context.Context, id string, d models.Disposition, from []models.Status) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":              d.Status,
			"confidence_score":    d.ConfidenceScore,
			"awarded_points":      d.AwardedPoints,
			"verification_source": d.Source,
			"verifier_output":     d.VerifierOutput,
		})
	if res.Error != nil {
		return false, apperr.Persistence("update disposition", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdatePoints sets awarded points. Non-zero points are never written onto a Rejected record;
// the bool is false when that guard, or a missing row, stopped the write.
func (r *ActivityRepository) UpdatePoints(ctx context.Context, id string, points int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("id = ? AND (status <> ? OR ? = 0)", id, models.StatusRejected, points).
		Update("awarded_points", points)
	if res.Error != nil {
		return false, apperr.Persistence("update points", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ActivityLog{})
	if res.Error != nil {
		return apperr.Persistence("delete activity log", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("activity log %s not found", id)
	}
	return nil
}

// ListByStatuses returns records in any of statuses, newest first.
func (r *ActivityRepository) ListByStatuses(ctx context.Context, statuses ...models.Status) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	err := r.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("submitted_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, apperr.Persistence("list activity logs", err)
	}
	return logs, nil
}

func (r *ActivityRepository) CountByStatuses(ctx context.Context, statuses ...models.Status) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.ActivityLog{}).Where("status IN ?", statuses).Count(&n).Error
	if err != nil {
		return 0, apperr.Persistence("count activity logs", err)
	}
	return n, nil
}

func (r *ActivityRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("submitted_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, apperr.Persistence("list user activity logs", err)
	}
	return logs, nil
}

// SumApprovedPoints is recomputed on every call; there is no cached total.
func (r *ActivityRepository) SumApprovedPoints(ctx context.Context, ownerID string) (int, error) {
	var total int
	err := r.DB.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("COALESCE(SUM(awarded_points), 0)").
		Where("owner_id = ? AND status = ?", ownerID, models.StatusApproved).
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Persistence("sum approved points", err)
	}
	return total, nil
}

func (r *ActivityRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.ActivityLog{}).Where("owner_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, apperr.Persistence("count user activity logs", err)
	}
	return n, nil
}
