package entity

import (
	"time"

	"github.com/google/uuid"
)

// Vote rows are unique per (user, period) at the schema level.
type Vote struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_period;index" json:"userId"`
	User        *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CandidateID uint          `gorm:"not null;index:idx_votes_period_candidate,priority:2" json:"candidateId"`
	Candidate   *Candidate    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PeriodID    uint          `gorm:"not null;uniqueIndex:idx_votes_user_period;index:idx_votes_period_candidate,priority:1" json:"periodId"`
	Period      *VotingPeriod `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}
