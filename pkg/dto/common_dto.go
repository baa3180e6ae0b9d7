package dto

import "io"

// PhotoFile is an uploaded candidate photo.
type PhotoFile struct {
	Reader   io.Reader
	FileName string
}

type IDUri struct {
	ID uint `uri:"id" binding:"required,gt=0"`
}

type PeriodFilter struct {
	PeriodID uint `form:"periodId"`
}
