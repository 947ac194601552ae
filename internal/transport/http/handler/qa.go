package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragdocs/internal/ai"
	"ragdocs/internal/app"
	"ragdocs/internal/transport/http/response"
)

type QAHandler struct {
	qaService *app.QAService
}

func NewQAHandler(qaService *app.QAService) *QAHandler {
	return &QAHandler{qaService: qaService}
}

type AskRequest struct {
	Question     string `json:"question" binding:"required"`
	DocumentIDs  []uint `json:"document_ids"`
	AllDocuments bool   `json:"all_documents"`
	TopK         int    `json:"top_k"`
}

func (h *QAHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.qaService.Ask(c.Request.Context(), app.AskInput{
		Question:     req.Question,
		DocumentIDs:  req.DocumentIDs,
		AllDocuments: req.AllDocuments,
		TopK:         req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrEmptyCandidateSet):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, ai.ErrDimensionMismatch):
			response.Error(c, http.StatusInternalServerError, response.CodeIntegrity, err.Error())
		case errors.Is(err, ai.ErrEmbeddingBackend), errors.Is(err, ai.ErrGenerationBackend):
			response.Error(c, http.StatusServiceUnavailable, response.CodeBackendUnavailable, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}

	response.OK(c, result)
}
