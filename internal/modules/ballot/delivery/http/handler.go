package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/modules/ballot/dto"
	ballot "github.com/helloSanmi/e-vote/internal/modules/ballot/service"
	"github.com/helloSanmi/e-vote/pkg/response"
	"github.com/helloSanmi/e-vote/pkg/validator"
)

type BallotHandler struct {
	service ballot.BallotService
}

func NewBallotHandler(service ballot.BallotService) *BallotHandler {
	return &BallotHandler{service: service}
}

func (h *BallotHandler) CastVote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var asserted *uuid.UUID
	if raw := strings.TrimSpace(req.UserID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "User mismatch"})
			return
		}
		asserted = &parsed
	}

	if err := h.service.CastVote(c.Request.Context(), userID, asserted, req.CandidateID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Vote cast")
}

func (h *BallotHandler) UserVote(c *gin.Context) {
	var query dto.UserVoteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(strings.TrimSpace(query.UserID))
	if err != nil || query.PeriodID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and periodId are required"})
		return
	}

	res, err := h.service.UserVote(c.Request.Context(), userID, query.PeriodID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
