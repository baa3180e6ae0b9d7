package ballot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/ballot/dto"
	"github.com/helloSanmi/e-vote/internal/modules/ballot/repository"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	"github.com/helloSanmi/e-vote/pkg/database"
	"github.com/helloSanmi/e-vote/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type BallotService interface {
	CastVote(ctx context.Context, sessionUserID uuid.UUID, assertedUserID *uuid.UUID, candidateID uint) error
	UserVote(ctx context.Context, userID uuid.UUID, periodID uint) (*dto.UserVoteResponse, error)
}

type Options struct {
	VoteRateLimit time.Duration
	Now           func() time.Time
}

type ballotService struct {
	repo        repository.BallotRepository
	publisher   notification.Publisher
	redisClient *redis.Client
	opts        Options
}

func NewBallotService(repo repository.BallotRepository, publisher notification.Publisher, redisClient *redis.Client, opts Options) BallotService {
	if publisher == nil {
		publisher = notification.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ballotService{
		repo:        repo,
		publisher:   publisher,
		redisClient: redisClient,
		opts:        opts,
	}
}

func (s *ballotService) CastVote(ctx context.Context, sessionUserID uuid.UUID, assertedUserID *uuid.UUID, candidateID uint) error {
	if assertedUserID != nil && *assertedUserID != sessionUserID {
		return apperror.Forbidden("User mismatch")
	}
	if candidateID == 0 {
		return apperror.Validation("candidateId is required")
	}

	period, err := s.repo.LatestPeriod(ctx)
	if err != nil {
		return apperror.Internal("Error casting vote", err)
	}
	if period == nil {
		return apperror.Validation("No voting period")
	}
	if !period.IsOpen(s.opts.Now()) {
		return apperror.Conflict("Voting is not currently open")
	}

	candidate, err := s.repo.FindCandidate(ctx, candidateID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Internal("Error casting vote", err)
	}
	if candidate == nil || !candidate.Published || candidate.PeriodID == nil || *candidate.PeriodID != period.ID {
		return apperror.Validation("Candidate not available for this period")
	}

	voted, err := s.repo.HasVote(ctx, sessionUserID, period.ID)
	if err != nil {
		return apperror.Internal("Error casting vote", err)
	}
	if voted {
		return apperror.Conflict("User already voted")
	}

	allowed, err := ratelimit.CheckAndSet(ctx, s.redisClient, sessionUserID.String(), "vote", s.opts.VoteRateLimit)
	if err != nil {
		log.Printf("vote rate limit check failed: %v", err)
	} else if !allowed {
		return apperror.RateLimited("Too many vote attempts, try again shortly")
	}

	vote := &entity.Vote{
		UserID:      sessionUserID,
		CandidateID: candidate.ID,
		PeriodID:    period.ID,
	}
	if err := s.repo.Cast(ctx, vote); err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Conflict("User already voted")
		}
		if errors.Is(err, repository.ErrTallyMismatch) {
			return apperror.Internal("Vote could not be recorded", err)
		}
		return apperror.Internal("Error casting vote", err)
	}

	s.publisher.Publish(ctx, notification.VoteCast(period.ID, candidate.ID))
	return nil
}

func (s *ballotService) UserVote(ctx context.Context, userID uuid.UUID, periodID uint) (*dto.UserVoteResponse, error) {
	if userID == uuid.Nil || periodID == 0 {
		return nil, apperror.Validation("userId and periodId are required")
	}

	candidate, err := s.repo.FindUserVote(ctx, userID, periodID)
	if err != nil {
		return nil, apperror.Internal("Failed to load vote", err)
	}
	if candidate == nil {
		return &dto.UserVoteResponse{}, nil
	}

	return &dto.UserVoteResponse{
		CandidateID: candidate.ID,
		Name:        candidate.Name,
		LGA:         candidate.LGA,
	}, nil
}
