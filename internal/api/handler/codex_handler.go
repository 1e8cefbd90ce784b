package handler

import (
	"net/http"

	"testops/internal/api/dto"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
)

type CodexHandler struct {
	service service.CodexService
}

func NewCodexHandler(svc service.CodexService) *CodexHandler {
	return &CodexHandler{service: svc}
}

func (h *CodexHandler) ListRepositories(c *gin.Context) {
	repos, err := h.service.ListRepositories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "repositories retrieved", repos)
}

func (h *CodexHandler) SubmitPrompt(c *gin.Context) {
	var req dto.SubmitPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.service.SubmitPrompt(c.Request.Context(), req.Prompt, req.Repository)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "prompt submitted", result)
}
