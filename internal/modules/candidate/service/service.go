package candidate

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/candidate/dto"
	"github.com/helloSanmi/e-vote/internal/modules/candidate/repository"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	search "github.com/helloSanmi/e-vote/internal/modules/search/service"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	commonDto "github.com/helloSanmi/e-vote/pkg/dto"
	"github.com/helloSanmi/e-vote/pkg/storage"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	photoFolder        = "candidates"
	defaultSearchLimit = 20
)

var allowedPhotoExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type CandidateService interface {
	AddCandidate(ctx context.Context, req dto.CreateCandidateRequest, photo *commonDto.PhotoFile) (*dto.CandidateResponse, error)
	RemoveCandidate(ctx context.Context, id uint) error
	AdminCandidates(ctx context.Context) ([]dto.CandidateResponse, error)
	PeriodCandidates(ctx context.Context, periodID uint) ([]dto.CandidateResponse, error)
	PublishedCandidates(ctx context.Context, periodID *uint) ([]dto.CandidateResponse, error)
	SearchCandidates(ctx context.Context, query dto.SearchQuery) ([]search.CandidateDoc, error)
}

type candidateService struct {
	repo      repository.CandidateRepository
	storage   storage.ImageStorage
	index     search.CandidateIndex
	publisher notification.Publisher
	sanitizer *bluemonday.Policy
}

func NewCandidateService(repo repository.CandidateRepository, imageStorage storage.ImageStorage, index search.CandidateIndex, publisher notification.Publisher) CandidateService {
	if publisher == nil {
		publisher = notification.Nop{}
	}
	if index == nil {
		index = search.Disabled{}
	}
	return &candidateService{
		repo:      repo,
		storage:   imageStorage,
		index:     index,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *candidateService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *candidateService) AddCandidate(ctx context.Context, req dto.CreateCandidateRequest, photo *commonDto.PhotoFile) (*dto.CandidateResponse, error) {
	name := s.clean(req.Name)
	lga := s.clean(req.LGA)
	if name == "" || lga == "" {
		return nil, apperror.Validation("Candidate name and LGA are required")
	}

	candidate := &entity.Candidate{
		Name:     name,
		LGA:      lga,
		PhotoURL: storage.NormalizePhotoPath(req.PhotoURL),
	}

	uploaded := false
	if photo != nil && photo.Reader != nil {
		if s.storage == nil {
			return nil, apperror.Validation("Photo uploads are not configured")
		}
		ext := strings.ToLower(filepath.Ext(photo.FileName))
		if !allowedPhotoExt[ext] {
			return nil, apperror.Validation("Photo must be a jpg, png, gif or webp image")
		}
		url, err := s.storage.UploadImage(ctx, photo.Reader, photoFolder, photo.FileName)
		if err != nil {
			return nil, apperror.Internal("Error uploading photo", err)
		}
		candidate.PhotoURL = &url
		uploaded = true
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		if uploaded {
			s.removePhoto(ctx, candidate.PhotoURL)
		}
		return nil, apperror.Internal("Error adding candidate", err)
	}

	if err := s.index.IndexCandidates(ctx, []*entity.Candidate{candidate}); err != nil {
		log.Printf("[Search] failed to index candidate %d: %v", candidate.ID, err)
	}
	s.publisher.Publish(ctx, notification.CandidatesUpdated())

	res := toResponse(candidate)
	return &res, nil
}

func (s *candidateService) RemoveCandidate(ctx context.Context, id uint) error {
	candidate, err := s.repo.FindStagedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Candidate not found or already published")
		}
		return apperror.Internal("Error removing candidate", err)
	}

	deleted, err := s.repo.DeleteStaged(ctx, id)
	if err != nil {
		return apperror.Internal("Error removing candidate", err)
	}
	if !deleted {
		// Published by a period start between the lookup and the delete.
		return apperror.NotFound("Candidate not found or already published")
	}

	s.removePhoto(ctx, candidate.PhotoURL)
	if err := s.index.RemoveCandidates(ctx, []uint{id}); err != nil {
		log.Printf("[Search] failed to remove candidate %d: %v", id, err)
	}
	s.publisher.Publish(ctx, notification.CandidatesUpdated())
	return nil
}

func (s *candidateService) removePhoto(ctx context.Context, url *string) {
	if url == nil || s.storage == nil {
		return
	}
	if err := s.storage.DeleteImage(ctx, *url); err != nil {
		log.Printf("[Storage] failed to remove photo %s: %v", *url, err)
	}
}

func (s *candidateService) AdminCandidates(ctx context.Context) ([]dto.CandidateResponse, error) {
	periodID, err := s.repo.LatestPeriodID(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load candidates", err)
	}

	candidates, err := s.repo.FindForAdmin(ctx, periodID)
	if err != nil {
		return nil, apperror.Internal("Failed to load candidates", err)
	}
	return toResponses(candidates), nil
}

func (s *candidateService) PeriodCandidates(ctx context.Context, periodID uint) ([]dto.CandidateResponse, error) {
	if periodID == 0 {
		return nil, apperror.Validation("periodId is required")
	}

	candidates, err := s.repo.FindByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperror.Internal("Failed to load candidates", err)
	}
	return toResponses(candidates), nil
}

func (s *candidateService) PublishedCandidates(ctx context.Context, periodID *uint) ([]dto.CandidateResponse, error) {
	if periodID == nil || *periodID == 0 {
		latest, err := s.repo.LatestPeriodID(ctx)
		if err != nil {
			return nil, apperror.Internal("Failed to load candidates", err)
		}
		if latest == nil {
			return []dto.CandidateResponse{}, nil
		}
		periodID = latest
	}

	candidates, err := s.repo.FindPublished(ctx, *periodID)
	if err != nil {
		return nil, apperror.Internal("Failed to load candidates", err)
	}
	return toResponses(candidates), nil
}

func (s *candidateService) SearchCandidates(ctx context.Context, query dto.SearchQuery) ([]search.CandidateDoc, error) {
	q := strings.TrimSpace(query.Q)
	if q == "" {
		return []search.CandidateDoc{}, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.index.SearchCandidates(ctx, q, limit)
	if err != nil {
		return nil, apperror.Internal("Search failed", err)
	}
	return hits, nil
}

func toResponse(c *entity.Candidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		ID:        c.ID,
		Name:      c.Name,
		LGA:       c.LGA,
		PhotoURL:  c.PhotoURL,
		PeriodID:  c.PeriodID,
		Published: c.Published,
		Votes:     c.Votes,
	}
}

func toResponses(candidates []*entity.Candidate) []dto.CandidateResponse {
	res := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		res = append(res, toResponse(c))
	}
	return res
}
