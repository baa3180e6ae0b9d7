package repository

import (
	"context"
	"errors"
	"time"

	"github.com/helloSanmi/e-vote/internal/entity"
	"gorm.io/gorm"
)

var (
	ErrActivePeriod = errors.New("there is already an active voting period")
	ErrNoCandidates = errors.New("no unpublished candidates available")
	ErrNotConcluded = errors.New("voting period is still active")
	ErrNotChanged   = errors.New("voting period was not updated")
)

type PeriodRepository interface {
	Latest(ctx context.Context) (*entity.VotingPeriod, error)
	FindByID(ctx context.Context, id uint) (*entity.VotingPeriod, error)
	FindAll(ctx context.Context) ([]*entity.VotingPeriod, error)
	// Start inserts period and publishes every staged candidate into it in
	// one transaction, returning the candidates now on the ballot.
	Start(ctx context.Context, period *entity.VotingPeriod, now time.Time) ([]*entity.Candidate, error)
	MarkForcedEnded(ctx context.Context, id uint) error
	MarkResultsPublished(ctx context.Context, id uint) error
	// Delete removes a concluded period with its votes and candidates and
	// returns the removed candidates.
	Delete(ctx context.Context, id uint, now time.Time) ([]*entity.Candidate, error)
}

type periodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepository{db: db}
}

func latest(tx *gorm.DB) (*entity.VotingPeriod, error) {
	// Find with a slice avoids gorm's record-not-found noise.
	var periods []*entity.VotingPeriod
	if err := tx.Order("id DESC").Limit(1).Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return periods[0], nil
}

// Latest returns nil, nil when no period exists.
func (r *periodRepository) Latest(ctx context.Context) (*entity.VotingPeriod, error) {
	return latest(r.db.WithContext(ctx))
}

func (r *periodRepository) FindByID(ctx context.Context, id uint) (*entity.VotingPeriod, error) {
	var period entity.VotingPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepository) FindAll(ctx context.Context) ([]*entity.VotingPeriod, error) {
	var periods []*entity.VotingPeriod
	if err := r.db.WithContext(ctx).Order("start_time DESC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *periodRepository) Start(ctx context.Context, period *entity.VotingPeriod, now time.Time) ([]*entity.Candidate, error) {
	var published []*entity.Candidate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := latest(tx)
		if err != nil {
			return err
		}
		if current != nil && !current.IsConcluded(now) {
			return ErrActivePeriod
		}

		period.ResultsPublished = false
		period.ForcedEnded = false
		if err := tx.Create(period).Error; err != nil {
			return err
		}

		// Concurrent starts serialize on these rows: the loser sees zero
		// staged candidates and rolls back.
		res := tx.Model(&entity.Candidate{}).
			Where("period_id IS NULL AND published = ?", false).
			Updates(map[string]interface{}{
				"period_id": period.ID,
				"published": true,
				"votes":     0,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoCandidates
		}

		if err := tx.Model(&entity.User{}).
			Where("has_voted = ?", true).
			Update("has_voted", false).Error; err != nil {
			return err
		}

		return tx.Where("period_id = ?", period.ID).Order("name ASC").Find(&published).Error
	})
	if err != nil {
		period.ID = 0
		return nil, err
	}

	return published, nil
}

func (r *periodRepository) MarkForcedEnded(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&entity.VotingPeriod{}).
		Where("id = ? AND forced_ended = ?", id, false).
		Update("forced_ended", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotChanged
	}
	return nil
}

func (r *periodRepository) MarkResultsPublished(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&entity.VotingPeriod{}).
		Where("id = ? AND results_published = ?", id, false).
		Update("results_published", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotChanged
	}
	return nil
}

func (r *periodRepository) Delete(ctx context.Context, id uint, now time.Time) ([]*entity.Candidate, error) {
	var removed []*entity.Candidate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var period entity.VotingPeriod
		if err := tx.First(&period, "id = ?", id).Error; err != nil {
			return err
		}
		if !period.IsConcluded(now) {
			return ErrNotConcluded
		}

		if err := tx.Where("period_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}

		if err := tx.Where("period_id = ?", id).Delete(&entity.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("period_id = ?", id).Delete(&entity.Candidate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.VotingPeriod{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}
