package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helloSanmi/e-vote/internal/modules/candidate/dto"
	candidate "github.com/helloSanmi/e-vote/internal/modules/candidate/service"
	commonDto "github.com/helloSanmi/e-vote/pkg/dto"
	"github.com/helloSanmi/e-vote/pkg/response"
	"github.com/helloSanmi/e-vote/pkg/storage"
	"github.com/helloSanmi/e-vote/pkg/validator"
)

type CandidateHandler struct {
	service       candidate.CandidateService
	publicBaseURL string
}

func NewCandidateHandler(service candidate.CandidateService, publicBaseURL string) *CandidateHandler {
	return &CandidateHandler{service: service, publicBaseURL: publicBaseURL}
}

func (h *CandidateHandler) absolute(c *gin.Context, list []dto.CandidateResponse) []dto.CandidateResponse {
	base := storage.PublicBaseURL(h.publicBaseURL, c.Request)
	for i := range list {
		list[i].PhotoURL = storage.AbsolutePhotoURL(list[i].PhotoURL, base)
	}
	return list
}

func (h *CandidateHandler) AddCandidate(c *gin.Context) {
	var req dto.CreateCandidateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var photo *commonDto.PhotoFile
	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read photo"})
			return
		}
		defer file.Close()
		photo = &commonDto.PhotoFile{Reader: file, FileName: fileHeader.Filename}
	}

	res, err := h.service.AddCandidate(c.Request.Context(), req, photo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	created := h.absolute(c, []dto.CandidateResponse{*res})[0]
	c.JSON(http.StatusCreated, dto.CreateCandidateResponse{Message: "Candidate added", Candidate: created})
}

func (h *CandidateHandler) RemoveCandidate(c *gin.Context) {
	var uri commonDto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate id"})
		return
	}

	if err := h.service.RemoveCandidate(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Candidate removed")
}

func (h *CandidateHandler) AdminCandidates(c *gin.Context) {
	res, err := h.service.AdminCandidates(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.absolute(c, res))
}

func (h *CandidateHandler) PeriodCandidates(c *gin.Context) {
	var uri commonDto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period id"})
		return
	}

	res, err := h.service.PeriodCandidates(c.Request.Context(), uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.absolute(c, res))
}

func (h *CandidateHandler) PublishedCandidates(c *gin.Context) {
	var filter commonDto.PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var periodID *uint
	if filter.PeriodID > 0 {
		periodID = &filter.PeriodID
	}

	res, err := h.service.PublishedCandidates(c.Request.Context(), periodID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.absolute(c, res))
}

func (h *CandidateHandler) SearchCandidates(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	hits, err := h.service.SearchCandidates(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	base := storage.PublicBaseURL(h.publicBaseURL, c.Request)
	for i := range hits {
		hits[i].PhotoURL = storage.AbsolutePhotoURL(hits[i].PhotoURL, base)
	}
	c.JSON(http.StatusOK, hits)
}
