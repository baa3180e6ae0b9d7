package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"gorm.io/gorm"
)

type ResultRepository interface {
	FindPeriod(ctx context.Context, id uint) (*entity.VotingPeriod, error)
	LatestPeriod(ctx context.Context) (*entity.VotingPeriod, error)
	HasVote(ctx context.Context, userID uuid.UUID, periodID uint) (bool, error)
	// Tallies returns the period's candidates ordered votes DESC, name ASC.
	Tallies(ctx context.Context, periodID uint) ([]*entity.Candidate, error)
	CountVotes(ctx context.Context, periodID uint) (int64, error)
	AllPeriods(ctx context.Context) ([]*entity.VotingPeriod, error)
	PublishedPeriodsVotedBy(ctx context.Context, userID uuid.UUID) ([]*entity.VotingPeriod, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) FindPeriod(ctx context.Context, id uint) (*entity.VotingPeriod, error) {
	var period entity.VotingPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *resultRepository) LatestPeriod(ctx context.Context) (*entity.VotingPeriod, error) {
	var periods []*entity.VotingPeriod
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return periods[0], nil
}

func (r *resultRepository) HasVote(ctx context.Context, userID uuid.UUID, periodID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Vote{}).
		Where("user_id = ? AND period_id = ?", userID, periodID).
		Count(&count).Error
	return count > 0, err
}

func (r *resultRepository) Tallies(ctx context.Context, periodID uint) ([]*entity.Candidate, error) {
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

func (r *resultRepository) CountVotes(ctx context.Context, periodID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Vote{}).
		Where("period_id = ?", periodID).
		Count(&count).Error
	return count, err
}

func (r *resultRepository) AllPeriods(ctx context.Context) ([]*entity.VotingPeriod, error) {
	var periods []*entity.VotingPeriod
	if err := r.db.WithContext(ctx).Order("start_time DESC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *resultRepository) PublishedPeriodsVotedBy(ctx context.Context, userID uuid.UUID) ([]*entity.VotingPeriod, error) {
	var periods []*entity.VotingPeriod
	err := r.db.WithContext(ctx).
		Where("results_published = ?", true).
		Where("id IN (?)", r.db.Model(&entity.Vote{}).Select("period_id").Where("user_id = ?", userID)).
		Order("start_time DESC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}
