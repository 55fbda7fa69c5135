package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/repository"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
	totalsConcurrency      = 8
)

// UserWithTotals is a user row enriched with derived point and activity figures.
type UserWithTotals struct {
	models.User
	TotalPoints   int   `json:"totalPoints"`
	ActivityCount int64 `json:"activityCount"`
}

// PointsService derives totals from activity records on every read. Nothing is cached.
type PointsService struct {
	logs  *repository.ActivityRepository
	users *repository.UserRepository
}

func NewPointsService(logs *repository.ActivityRepository, users *repository.UserRepository) *PointsService {
	return &PointsService{logs: logs, users: users}
}

func (s *PointsService) TotalPoints(ctx context.Context, uid string) (int, error) {
	return s.logs.SumApprovedPoints(ctx, uid)
}

func (s *PointsService) ActivityCount(ctx context.Context, uid string) (int64, error) {
	return s.logs.CountByOwner(ctx, uid)
}

func (s *PointsService) ListUsersWithTotals(ctx context.Context, search string) ([]UserWithTotals, error) {
	users, err := s.users.Search(ctx, search)
	if err != nil {
		return nil, err
	}

	out := make([]UserWithTotals, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(totalsConcurrency)
	for i := range users {
		i := i
		g.Go(func() error {
			total, err := s.TotalPoints(gctx, users[i].UID)
			if err != nil {
				return err
			}
			count, err := s.ActivityCount(gctx, users[i].UID)
			if err != nil {
				return err
			}
			out[i] = UserWithTotals{User: users[i], TotalPoints: total, ActivityCount: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PointsService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *PointsService) Leaderboard(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	return s.users.Leaderboard(ctx, limit)
}
