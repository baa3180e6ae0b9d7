package dto

// CreateCandidateRequest binds both JSON and multipart bodies.
type CreateCandidateRequest struct {
	Name     string `json:"name" form:"name"`
	LGA      string `json:"lga" form:"lga"`
	PhotoURL string `json:"photoUrl" form:"photoUrl"`
}

type SearchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type CandidateResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	LGA       string  `json:"lga"`
	PhotoURL  *string `json:"photoUrl"`
	PeriodID  *uint   `json:"periodId"`
	Published bool    `json:"published"`
	Votes     int64   `json:"votes"`
}

type CreateCandidateResponse struct {
	Message   string            `json:"message"`
	Candidate CandidateResponse `json:"candidate"`
}
