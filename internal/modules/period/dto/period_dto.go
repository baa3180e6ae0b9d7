package dto

import "time"

type StartPeriodRequest struct {
	StartTime *time.Time `json:"startTime" binding:"required"`
	EndTime   *time.Time `json:"endTime" binding:"required"`
}

type StartPeriodResponse struct {
	Message  string `json:"message"`
	PeriodID uint   `json:"periodId"`
}

type PeriodResponse struct {
	ID               uint      `json:"id"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	ResultsPublished bool      `json:"resultsPublished"`
	ForcedEnded      bool      `json:"forcedEnded"`
	CreatedAt        time.Time `json:"createdAt"`
}
