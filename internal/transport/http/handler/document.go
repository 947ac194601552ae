package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ragdocs/internal/ai"
	"ragdocs/internal/app"
	"ragdocs/internal/chunker"
	"ragdocs/internal/pkg/pdfextract"
	"ragdocs/internal/transport/http/response"
)

const maxPDFSize = 50 << 20 // 50 MB

type DocumentHandler struct {
	ingestService   *app.IngestService
	documentService *app.DocumentService
}

func NewDocumentHandler(ingestService *app.IngestService, documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		ingestService:   ingestService,
		documentService: documentService,
	}
}

// Upload accepts a multipart form with "file" (PDF) and optional "title",
// and runs the ingestion pipeline.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 50MB)")
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	pdfBytes, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		PDF:      pdfBytes,
		Title:    c.PostForm("title"),
		Filename: file.Filename,
	})
	if err != nil {
		writeIngestError(c, err)
		return
	}

	response.OK(c, result)
}

func writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrDuplicateDocument):
		response.Error(c, http.StatusConflict, response.CodeDuplicateDocument, err.Error())
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, pdfextract.ErrInvalidPDF),
		errors.Is(err, pdfextract.ErrNoExtractableText),
		errors.Is(err, chunker.ErrInvalidConfig):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, ai.ErrDimensionMismatch):
		response.Error(c, http.StatusInternalServerError, response.CodeIntegrity, err.Error())
	case errors.Is(err, ai.ErrEmbeddingBackend):
		response.Error(c, http.StatusServiceUnavailable, response.CodeBackendUnavailable, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
	}
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	doc, err := h.documentService.Get(id)
	if err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.documentService.Delete(id); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
