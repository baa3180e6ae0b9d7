package dto

import "time"

type ResultsQuery struct {
	PeriodID uint   `form:"periodId"`
	UserID   string `form:"userId"`
}

type ResultRow struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	LGA      string  `json:"lga"`
	PhotoURL *string `json:"photoUrl"`
	Votes    int64   `json:"votes"`
}

type ResultsResponse struct {
	Published       bool        `json:"published"`
	Results         []ResultRow `json:"results"`
	NoParticipation bool        `json:"noParticipation,omitempty"`
}

type PeriodSummary struct {
	ID               uint      `json:"id"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	ResultsPublished bool      `json:"resultsPublished"`
	ForcedEnded      bool      `json:"forcedEnded"`
}
