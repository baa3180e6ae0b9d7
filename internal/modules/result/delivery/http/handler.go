package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/modules/result/dto"
	result "github.com/helloSanmi/e-vote/internal/modules/result/service"
	commonDto "github.com/helloSanmi/e-vote/pkg/dto"
	"github.com/helloSanmi/e-vote/pkg/response"
	"github.com/helloSanmi/e-vote/pkg/storage"
	"github.com/helloSanmi/e-vote/pkg/validator"
)

type ResultHandler struct {
	service       result.ResultService
	publicBaseURL string
}

func NewResultHandler(service result.ResultService, publicBaseURL string) *ResultHandler {
	return &ResultHandler{service: service, publicBaseURL: publicBaseURL}
}

// requester prefers the authenticated subject over the userId query value.
func requester(c *gin.Context, raw string) (*uuid.UUID, bool) {
	if id, err := response.GetUserID(c); err == nil {
		return &id, true
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (h *ResultHandler) absolute(c *gin.Context, rows []dto.ResultRow) {
	base := storage.PublicBaseURL(h.publicBaseURL, c.Request)
	for i := range rows {
		rows[i].PhotoURL = storage.AbsolutePhotoURL(rows[i].PhotoURL, base)
	}
}

func (h *ResultHandler) PublicResults(c *gin.Context) {
	var query dto.ResultsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	requesterID, ok := requester(c, query.UserID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	res, err := h.service.PublicResults(c.Request.Context(), query.PeriodID, requesterID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.absolute(c, res.Results)
	c.JSON(http.StatusOK, res)
}

func (h *ResultHandler) AdminResults(c *gin.Context) {
	var filter commonDto.PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var periodID *uint
	if filter.PeriodID > 0 {
		periodID = &filter.PeriodID
	}

	rows, err := h.service.AdminResults(c.Request.Context(), periodID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.absolute(c, rows)
	c.JSON(http.StatusOK, rows)
}

func (h *ResultHandler) ParticipatedPeriods(c *gin.Context) {
	userID, ok := requester(c, c.Query("userId"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	res, err := h.service.ParticipatedPeriods(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
