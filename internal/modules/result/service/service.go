package result

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/result/dto"
	"github.com/helloSanmi/e-vote/internal/modules/result/repository"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	"gorm.io/gorm"
)

type ResultService interface {
	PublicResults(ctx context.Context, periodID uint, requesterID *uuid.UUID) (*dto.ResultsResponse, error)
	AdminResults(ctx context.Context, periodID *uint) ([]dto.ResultRow, error)
	ParticipatedPeriods(ctx context.Context, userID *uuid.UUID) ([]dto.PeriodSummary, error)
}

type resultService struct {
	repo repository.ResultRepository
}

func NewResultService(repo repository.ResultRepository) ResultService {
	return &resultService{repo: repo}
}

// PublicResults hides tallies until publication, and from requesters who
// did not vote in the period.
func (s *resultService) PublicResults(ctx context.Context, periodID uint, requesterID *uuid.UUID) (*dto.ResultsResponse, error) {
	if periodID == 0 {
		return nil, apperror.Validation("periodId is required")
	}

	period, err := s.repo.FindPeriod(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Voting period not found")
		}
		return nil, apperror.Internal("Error fetching results", err)
	}

	if !period.ResultsPublished {
		return &dto.ResultsResponse{Published: false, Results: []dto.ResultRow{}}, nil
	}

	if requesterID != nil {
		voted, err := s.repo.HasVote(ctx, *requesterID, period.ID)
		if err != nil {
			return nil, apperror.Internal("Error fetching results", err)
		}
		if !voted {
			return &dto.ResultsResponse{Published: true, Results: []dto.ResultRow{}, NoParticipation: true}, nil
		}
	}

	rows, err := s.tallies(ctx, period.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ResultsResponse{Published: true, Results: rows}, nil
}

func (s *resultService) AdminResults(ctx context.Context, periodID *uint) ([]dto.ResultRow, error) {
	if periodID == nil || *periodID == 0 {
		latest, err := s.repo.LatestPeriod(ctx)
		if err != nil {
			return nil, apperror.Internal("Error fetching results", err)
		}
		if latest == nil {
			return []dto.ResultRow{}, nil
		}
		periodID = &latest.ID
	}
	return s.tallies(ctx, *periodID)
}

func (s *resultService) tallies(ctx context.Context, periodID uint) ([]dto.ResultRow, error) {
	candidates, err := s.repo.Tallies(ctx, periodID)
	if err != nil {
		return nil, apperror.Internal("Error fetching results", err)
	}

	rows := make([]dto.ResultRow, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, dto.ResultRow{
			ID:       c.ID,
			Name:     c.Name,
			LGA:      c.LGA,
			PhotoURL: c.PhotoURL,
			Votes:    c.Votes,
		})
	}
	return rows, nil
}

func (s *resultService) ParticipatedPeriods(ctx context.Context, userID *uuid.UUID) ([]dto.PeriodSummary, error) {
	var (
		periods []*entity.VotingPeriod
		err     error
	)
	if userID == nil {
		periods, err = s.repo.AllPeriods(ctx)
	} else {
		periods, err = s.repo.PublishedPeriodsVotedBy(ctx, *userID)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load voting periods", err)
	}

	res := make([]dto.PeriodSummary, 0, len(periods))
	for _, p := range periods {
		res = append(res, dto.PeriodSummary{
			ID:               p.ID,
			StartTime:        p.StartTime,
			EndTime:          p.EndTime,
			ResultsPublished: p.ResultsPublished,
			ForcedEnded:      p.ForcedEnded,
		})
	}
	return res, nil
}
