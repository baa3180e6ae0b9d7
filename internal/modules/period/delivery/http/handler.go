package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helloSanmi/e-vote/internal/modules/period/dto"
	period "github.com/helloSanmi/e-vote/internal/modules/period/service"
	commonDto "github.com/helloSanmi/e-vote/pkg/dto"
	"github.com/helloSanmi/e-vote/pkg/response"
	"github.com/helloSanmi/e-vote/pkg/validator"
)

type PeriodHandler struct {
	service period.PeriodService
}

func NewPeriodHandler(service period.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: service}
}

func (h *PeriodHandler) StartPeriod(c *gin.Context) {
	var req dto.StartPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	periodID, err := h.service.StartPeriod(c.Request.Context(), req.StartTime, req.EndTime)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StartPeriodResponse{Message: "Voting started", PeriodID: periodID})
}

func (h *PeriodHandler) EndEarly(c *gin.Context) {
	if err := h.service.EndEarly(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Voting ended early")
}

func (h *PeriodHandler) PublishResults(c *gin.Context) {
	if err := h.service.PublishResults(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Results published")
}

func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	var uri commonDto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period id"})
		return
	}

	if err := h.service.DeletePeriod(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Voting period deleted")
}

// LatestPeriod answers null when no period was ever started.
func (h *PeriodHandler) LatestPeriod(c *gin.Context) {
	res, err := h.service.LatestPeriod(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	res, err := h.service.ListPeriods(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
