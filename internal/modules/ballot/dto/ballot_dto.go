package dto

type CastVoteRequest struct {
	CandidateID uint   `json:"candidateId"`
	UserID      string `json:"userId"`
}

type UserVoteQuery struct {
	UserID   string `form:"userId"`
	PeriodID uint   `form:"periodId"`
}

// UserVoteResponse is empty when the user has not voted in the period.
type UserVoteResponse struct {
	CandidateID uint   `json:"candidateId,omitempty"`
	Name        string `json:"name,omitempty"`
	LGA         string `json:"lga,omitempty"`
}
