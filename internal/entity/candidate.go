package entity

import "time"

// Candidate with a nil PeriodID is staged: not yet on any ballot and never published.
type Candidate struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	LGA       string        `gorm:"column:lga;size:255" json:"lga"`
	PhotoURL  *string       `gorm:"size:512" json:"photoUrl"`
	PeriodID  *uint         `gorm:"index" json:"periodId"`
	Period    *VotingPeriod `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Published bool          `gorm:"not null;default:false;index" json:"published"`
	Votes     int64         `gorm:"not null;default:0" json:"votes"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}
