package service

import (
	"context"
	"math"

	resultRepo "github.com/helloSanmi/e-vote/internal/modules/result/repository"
	userRepo "github.com/helloSanmi/e-vote/internal/modules/user/repository"
	"github.com/helloSanmi/e-vote/pkg/apperror"
)

type Turnout struct {
	TotalUsers int64   `json:"totalUsers"`
	PeriodID   *uint   `json:"periodId"`
	VotesCast  int64   `json:"votesCast"`
	Percent    float64 `json:"turnoutPercent"`
}

type StatService interface {
	GetTotalUsers(ctx context.Context) (int64, error)
	// GetTurnout reports participation in the latest period.
	GetTurnout(ctx context.Context) (*Turnout, error)
}

type statService struct {
	userRepo   userRepo.UserRepository
	resultRepo resultRepo.ResultRepository
}

func NewStatService(userRepo userRepo.UserRepository, resultRepo resultRepo.ResultRepository) StatService {
	return &statService{
		userRepo:   userRepo,
		resultRepo: resultRepo,
	}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, apperror.Internal("Failed to count users", err)
	}
	return count, nil
}

func (s *statService) GetTurnout(ctx context.Context) (*Turnout, error) {
	total, err := s.GetTotalUsers(ctx)
	if err != nil {
		return nil, err
	}

	res := &Turnout{TotalUsers: total}
	period, err := s.resultRepo.LatestPeriod(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load voting period", err)
	}
	if period == nil {
		return res, nil
	}

	res.PeriodID = &period.ID
	res.VotesCast, err = s.resultRepo.CountVotes(ctx, period.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to count votes", err)
	}
	if total > 0 {
		res.Percent = math.Round(float64(res.VotesCast)/float64(total)*10000) / 100
	}
	return res, nil
}
