package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	statService "github.com/helloSanmi/e-vote/internal/modules/stat/service"
	"github.com/helloSanmi/e-vote/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetTotalUsers(c *gin.Context) {
	count, err := h.statService.GetTotalUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers": count,
	})
}

func (h *StatHandler) GetTurnout(c *gin.Context) {
	turnout, err := h.statService.GetTurnout(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, turnout)
}
