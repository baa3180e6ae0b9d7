package period

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/helloSanmi/e-vote/internal/entity"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/helloSanmi/e-vote/internal/modules/period/dto"
	"github.com/helloSanmi/e-vote/internal/modules/period/repository"
	search "github.com/helloSanmi/e-vote/internal/modules/search/service"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	"github.com/helloSanmi/e-vote/pkg/storage"
	"gorm.io/gorm"
)

type PeriodService interface {
	StartPeriod(ctx context.Context, start, end *time.Time) (uint, error)
	EndEarly(ctx context.Context) error
	PublishResults(ctx context.Context) error
	DeletePeriod(ctx context.Context, periodID uint) error
	LatestPeriod(ctx context.Context) (*dto.PeriodResponse, error)
	ListPeriods(ctx context.Context) ([]dto.PeriodResponse, error)
}

type periodService struct {
	repo      repository.PeriodRepository
	publisher notification.Publisher
	storage   storage.ImageStorage
	index     search.CandidateIndex
	now       func() time.Time
}

func NewPeriodService(repo repository.PeriodRepository, publisher notification.Publisher, imageStorage storage.ImageStorage, index search.CandidateIndex) PeriodService {
	return NewPeriodServiceWithClock(repo, publisher, imageStorage, index, time.Now)
}

func NewPeriodServiceWithClock(repo repository.PeriodRepository, publisher notification.Publisher, imageStorage storage.ImageStorage, index search.CandidateIndex, now func() time.Time) PeriodService {
	if publisher == nil {
		publisher = notification.Nop{}
	}
	if index == nil {
		index = search.Disabled{}
	}
	return &periodService{
		repo:      repo,
		publisher: publisher,
		storage:   imageStorage,
		index:     index,
		now:       now,
	}
}

func (s *periodService) StartPeriod(ctx context.Context, start, end *time.Time) (uint, error) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return 0, apperror.Validation("startTime and endTime are required")
	}
	if !start.Before(*end) {
		return 0, apperror.Validation("startTime must be before endTime")
	}

	period := &entity.VotingPeriod{
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	}

	published, err := s.repo.Start(ctx, period, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActivePeriod):
			return 0, apperror.Conflict("There is already an active voting period")
		case errors.Is(err, repository.ErrNoCandidates):
			return 0, apperror.Validation("No unpublished candidates available to start voting")
		default:
			return 0, apperror.Internal("Error starting voting", err)
		}
	}

	if err := s.index.IndexCandidates(ctx, published); err != nil {
		log.Printf("[Search] failed to reindex candidates for period %d: %v", period.ID, err)
	}

	s.publisher.Publish(ctx, notification.VotingStarted(period.ID))
	s.publisher.Publish(ctx, notification.CandidatesUpdated())

	return period.ID, nil
}

func (s *periodService) latest(ctx context.Context) (*entity.VotingPeriod, error) {
	period, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load voting period", err)
	}
	if period == nil {
		return nil, apperror.Validation("No voting period found")
	}
	return period, nil
}

func (s *periodService) EndEarly(ctx context.Context) error {
	period, err := s.latest(ctx)
	if err != nil {
		return err
	}
	if period.ForcedEnded {
		return apperror.Conflict("Voting already forced to end")
	}

	if err := s.repo.MarkForcedEnded(ctx, period.ID); err != nil {
		if errors.Is(err, repository.ErrNotChanged) {
			return apperror.Conflict("Voting already forced to end")
		}
		return apperror.Internal("Error ending voting", err)
	}

	s.publisher.Publish(ctx, notification.VotingEnded(period.ID))
	return nil
}

func (s *periodService) PublishResults(ctx context.Context) error {
	period, err := s.latest(ctx)
	if err != nil {
		return err
	}
	if period.ResultsPublished {
		return apperror.Conflict("Results already published")
	}
	if !period.HasEnded(s.now()) {
		return apperror.Conflict("Voting still ongoing")
	}

	if err := s.repo.MarkResultsPublished(ctx, period.ID); err != nil {
		if errors.Is(err, repository.ErrNotChanged) {
			return apperror.Conflict("Results already published")
		}
		return apperror.Internal("Error publishing results", err)
	}

	s.publisher.Publish(ctx, notification.ResultsPublished(period.ID))
	return nil
}

func (s *periodService) DeletePeriod(ctx context.Context, periodID uint) error {
	if periodID == 0 {
		return apperror.Validation("Invalid period id")
	}

	removed, err := s.repo.Delete(ctx, periodID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperror.NotFound("Voting period not found")
		case errors.Is(err, repository.ErrNotConcluded):
			return apperror.Conflict("Cannot delete an active voting period")
		default:
			return apperror.Internal("Error deleting voting period", err)
		}
	}

	ids := make([]uint, 0, len(removed))
	for _, c := range removed {
		ids = append(ids, c.ID)
		if c.PhotoURL == nil || s.storage == nil {
			continue
		}
		if err := s.storage.DeleteImage(ctx, *c.PhotoURL); err != nil {
			log.Printf("[Storage] failed to remove photo %s: %v", *c.PhotoURL, err)
		}
	}
	if err := s.index.RemoveCandidates(ctx, ids); err != nil {
		log.Printf("[Search] failed to drop candidates of period %d: %v", periodID, err)
	}

	s.publisher.Publish(ctx, notification.PeriodDeleted(periodID))
	s.publisher.Publish(ctx, notification.CandidatesUpdated())
	return nil
}

func (s *periodService) LatestPeriod(ctx context.Context) (*dto.PeriodResponse, error) {
	period, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load voting period", err)
	}
	if period == nil {
		return nil, nil
	}
	res := toResponse(period)
	return &res, nil
}

func (s *periodService) ListPeriods(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load voting periods", err)
	}

	res := make([]dto.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		res = append(res, toResponse(p))
	}
	return res, nil
}

func toResponse(p *entity.VotingPeriod) dto.PeriodResponse {
	return dto.PeriodResponse{
		ID:               p.ID,
		StartTime:        p.StartTime,
		EndTime:          p.EndTime,
		ResultsPublished: p.ResultsPublished,
		ForcedEnded:      p.ForcedEnded,
		CreatedAt:        p.CreatedAt,
	}
}
