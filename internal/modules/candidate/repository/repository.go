package repository

import (
	"context"

	"github.com/helloSanmi/e-vote/internal/entity"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *entity.Candidate) error
	FindStagedByID(ctx context.Context, id uint) (*entity.Candidate, error)
	// DeleteStaged reports whether a staged candidate was removed.
	DeleteStaged(ctx context.Context, id uint) (bool, error)
	// FindForAdmin returns staged candidates plus those of periodID, newest first.
	FindForAdmin(ctx context.Context, periodID *uint) ([]*entity.Candidate, error)
	FindByPeriod(ctx context.Context, periodID uint) ([]*entity.Candidate, error)
	FindPublished(ctx context.Context, periodID uint) ([]*entity.Candidate, error)
	LatestPeriodID(ctx context.Context) (*uint, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *entity.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepository) FindStagedByID(ctx context.Context, id uint) (*entity.Candidate, error) {
	var candidate entity.Candidate
	err := r.db.WithContext(ctx).
		Where("id = ? AND published = ? AND period_id IS NULL", id, false).
		First(&candidate).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) DeleteStaged(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND published = ? AND period_id IS NULL", id, false).
		Delete(&entity.Candidate{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *candidateRepository) FindForAdmin(ctx context.Context, periodID *uint) ([]*entity.Candidate, error) {
	var candidates []*entity.Candidate
	query := r.db.WithContext(ctx)
	if periodID != nil {
		query = query.Where("period_id IS NULL OR period_id = ?", *periodID)
	} else {
		query = query.Where("period_id IS NULL")
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) FindByPeriod(ctx context.Context, periodID uint) ([]*entity.Candidate, error) {
	var candidates []*entity.Candidate
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("votes DESC").Order("name ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) FindPublished(ctx context.Context, periodID uint) ([]*entity.Candidate, error) {
	var candidates []*entity.Candidate
	err := r.db.WithContext(ctx).
		Where("period_id = ? AND published = ?", periodID, true).
		Order("name ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) LatestPeriodID(ctx context.Context) (*uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.VotingPeriod{}).
		Order("id DESC").Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
