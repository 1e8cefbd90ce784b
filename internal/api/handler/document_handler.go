package handler

import (
	"net/http"
	"strconv"

	"testops/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	service service.DocumentService
}

func NewDocumentHandler(svc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Upload accepts multipart form data: the file plus project_id and an
// optional is_current flag.
func (h *DocumentHandler) Upload(c *gin.Context) {
	projectID, ok := parseID(c, "project_id", c.PostForm("project_id"))
	if !ok {
		return
	}

	markCurrent := false
	if raw := c.PostForm("is_current"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respond(c, http.StatusBadRequest, "invalid is_current", nil)
			return
		}
		markCurrent = parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	document, err := h.service.Upload(c.Request.Context(), projectID, fileHeader.Filename, file, markCurrent)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	documents, err := h.service.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "documents retrieved", documents)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := queryID(c, "document_id")
	if !ok {
		return
	}
	document, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "document retrieved", document)
}

// Download streams the stored file. This is the one endpoint that skips
// the JSON envelope.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := queryID(c, "document_id")
	if !ok {
		return
	}
	document, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(document.Filepath, document.Filename)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := queryID(c, "document_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "document deleted", nil)
}
