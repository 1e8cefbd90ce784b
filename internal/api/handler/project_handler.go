package handler

import (
	"net/http"

	"testops/internal/api/dto"
	"testops/internal/domain"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	service service.ProjectService
}

func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project := domain.NewProject(req.Name, req.Description, req.Version, req.Owner, domain.ProjectStatus(req.Status))
	if err := h.service.Create(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "project created", project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "projects retrieved", projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	project, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "project retrieved", project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	project, err := h.service.Update(c.Request.Context(), id, req.UpdatedData)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "project updated", project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "project deleted", nil)
}
