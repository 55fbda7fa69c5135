package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

const MaxSearchResults = 50

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// LeaderboardRow is one ranked user. Rank follows SQL RANK(): ties share a rank and leave a gap.
type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	UID            string `json:"uid"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
	Points         int    `json:"points"`
	Activities     int64  `json:"activities"`
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("a profile with this uid or email already exists")
	}
	if err != nil {
		return apperr.Persistence("create user", err)
	}
	return nil
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %s not found", uid)
	}
	if err != nil {
		return nil, apperr.Persistence("load user", err)
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	if err != nil {
		return false, apperr.Persistence("check email", err)
	}
	return n > 0, nil
}

func (r *UserRepository) UIDExists(ctx context.Context, uid string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Count(&n).Error; err != nil {
		return false, apperr.Persistence("check uid", err)
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search matches name, email or uid, newest accounts first, capped at MaxSearchResults.
func (r *UserRepository) Search(ctx context.Context, term string) ([]models.User, error) {
	users := []models.User{}
	q := r.DB.WithContext(ctx).Order("created_at DESC").Limit(MaxSearchResults)
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(uid) LIKE ? ESCAPE '\'`, like, like, like)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, apperr.Persistence("search users", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, apperr.Persistence("count users", err)
	}
	return n, nil
}

// Leaderboard ranks users by the sum of their approved points.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows := []LeaderboardRow{}
	err := r.DB.WithContext(ctx).
		Table("users").
		Select("users.uid AS uid, users.full_name AS full_name, users.profile_picture AS profile_picture, "+
			"COALESCE(SUM(CASE WHEN activity_logs.status = ? THEN activity_logs.awarded_points ELSE 0 END), 0) AS points, "+
			"COUNT(activity_logs.id) AS activities", models.StatusApproved).
		Joins("LEFT JOIN activity_logs ON activity_logs.owner_id = users.uid").
		Group("users.uid, users.full_name, users.profile_picture").
		Order("points DESC, users.full_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Persistence("leaderboard", err)
	}

	for i := range rows {
		if i > 0 && rows[i].Points == rows[i-1].Points {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows, nil
}
