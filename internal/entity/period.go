package entity

import "time"

// VotingPeriod is an election window. ResultsPublished and ForcedEnded only
// ever move from false to true.
type VotingPeriod struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StartTime        time.Time `gorm:"not null;index:idx_period_start_end" json:"startTime"`
	EndTime          time.Time `gorm:"not null;index:idx_period_start_end" json:"endTime"`
	ResultsPublished bool      `gorm:"not null;default:false" json:"resultsPublished"`
	ForcedEnded      bool      `gorm:"not null;default:false" json:"forcedEnded"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (VotingPeriod) TableName() string {
	return "voting_periods"
}

// IsConcluded reports whether the period is over at now.
func (p *VotingPeriod) IsConcluded(now time.Time) bool {
	return p.ResultsPublished || p.ForcedEnded || now.After(p.EndTime)
}

// IsOpen reports whether ballots are accepted at now.
func (p *VotingPeriod) IsOpen(now time.Time) bool {
	return !p.ForcedEnded && !now.Before(p.StartTime) && !now.After(p.EndTime)
}

// HasEnded reports whether results may be published at now.
func (p *VotingPeriod) HasEnded(now time.Time) bool {
	return p.ForcedEnded || !now.Before(p.EndTime)
}

// EndedNaturally reports whether the end time passed without an admin ending it.
func (p *VotingPeriod) EndedNaturally(now time.Time) bool {
	return !p.ForcedEnded && !p.ResultsPublished && now.After(p.EndTime)
}
