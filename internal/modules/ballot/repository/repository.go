package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"gorm.io/gorm"
)

// ErrTallyMismatch means the candidate row left the period while the vote
// was being recorded.
var ErrTallyMismatch = errors.New("candidate tally was not updated")

type BallotRepository interface {
	LatestPeriod(ctx context.Context) (*entity.VotingPeriod, error)
	FindCandidate(ctx context.Context, id uint) (*entity.Candidate, error)
	HasVote(ctx context.Context, userID uuid.UUID, periodID uint) (bool, error)
	// Cast records vote, bumps the candidate tally and flags the user in one
	// transaction.
	Cast(ctx context.Context, vote *entity.Vote) error
	FindUserVote(ctx context.Context, userID uuid.UUID, periodID uint) (*entity.Candidate, error)
}

type ballotRepository struct {
	db *gorm.DB
}

func NewBallotRepository(db *gorm.DB) BallotRepository {
	return &ballotRepository{db: db}
}

func (r *ballotRepository) LatestPeriod(ctx context.Context) (*entity.VotingPeriod, error) {
	var periods []*entity.VotingPeriod
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return periods[0], nil
}

func (r *ballotRepository) FindCandidate(ctx context.Context, id uint) (*entity.Candidate, error) {
	var candidate entity.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *ballotRepository) HasVote(ctx context.Context, userID uuid.UUID, periodID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Vote{}).
		Where("user_id = ? AND period_id = ?", userID, periodID).
		Count(&count).Error
	return count > 0, err
}

func (r *ballotRepository) Cast(ctx context.Context, vote *entity.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.Candidate{}).
			Where("id = ? AND period_id = ?", vote.CandidateID, vote.PeriodID).
			Update("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrTallyMismatch
		}

		return tx.Model(&entity.User{}).
			Where("id = ?", vote.UserID).
			Update("has_voted", true).Error
	})
}

func (r *ballotRepository) FindUserVote(ctx context.Context, userID uuid.UUID, periodID uint) (*entity.Candidate, error) {
	var candidates []*entity.Candidate
	err := r.db.WithContext(ctx).
		Joins("JOIN votes ON votes.candidate_id = candidates.id").
		Where("votes.user_id = ? AND votes.period_id = ?", userID, periodID).
		Limit(1).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}
