package handler

import (
	"net/http"

	"testops/internal/api/dto"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(svc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

func (h *WorkflowHandler) Create(c *gin.Context) {
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	workflow, err := h.service.Create(c.Request.Context(), projectID, req.Name, req.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "workflow registered", workflow)
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	id, ok := queryID(c, "workflow_id")
	if !ok {
		return
	}
	workflow, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow retrieved", workflow)
}

// List returns all workflows, optionally filtered to one project.
func (h *WorkflowHandler) List(c *gin.Context) {
	var projectID *uuid.UUID
	if raw := c.Query("project_id"); raw != "" {
		parsed, ok := parseID(c, "project_id", raw)
		if !ok {
			return
		}
		projectID = &parsed
	}
	workflows, err := h.service.List(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflows retrieved", workflows)
}

func (h *WorkflowHandler) Update(c *gin.Context) {
	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, ok := parseID(c, "workflow_id", req.WorkflowID)
	if !ok {
		return
	}
	workflow, err := h.service.Update(c.Request.Context(), id, req.UpdatedData)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow updated", workflow)
}

func (h *WorkflowHandler) Delete(c *gin.Context) {
	id, ok := queryID(c, "workflow_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow deleted", nil)
}

func (h *WorkflowHandler) Info(c *gin.Context) {
	id, ok := queryID(c, "workflow_id")
	if !ok {
		return
	}
	info, err := h.service.Info(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow info retrieved", info)
}

func (h *WorkflowHandler) Parameters(c *gin.Context) {
	id, ok := queryID(c, "workflow_id")
	if !ok {
		return
	}
	parameters, err := h.service.Parameters(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow parameters retrieved", parameters)
}

// Run invokes the workflow synchronously and returns the finished
// execution record.
func (h *WorkflowHandler) Run(c *gin.Context) {
	var req dto.RunWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, ok := parseID(c, "workflow_id", req.WorkflowID)
	if !ok {
		return
	}
	execution, err := h.service.Run(c.Request.Context(), id, req.Inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "workflow executed", execution)
}

func (h *WorkflowHandler) ExecutionStatus(c *gin.Context) {
	id, ok := queryID(c, "execution_id")
	if !ok {
		return
	}
	execution, err := h.service.GetExecution(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "execution retrieved", execution)
}

// ExecutionHistory lists executions for a project, or for a single
// workflow when workflow_id is given.
func (h *WorkflowHandler) ExecutionHistory(c *gin.Context) {
	if raw := c.Query("workflow_id"); raw != "" {
		workflowID, ok := parseID(c, "workflow_id", raw)
		if !ok {
			return
		}
		executions, err := h.service.ListExecutionsByWorkflow(c.Request.Context(), workflowID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "executions retrieved", executions)
		return
	}

	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	executions, err := h.service.ListExecutions(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "executions retrieved", executions)
}

func (h *WorkflowHandler) CancelExecution(c *gin.Context) {
	id, ok := queryID(c, "execution_id")
	if !ok {
		return
	}
	execution, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "execution cancelled", execution)
}

func (h *WorkflowHandler) GetConfig(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	config, err := h.service.GetConfig(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "config retrieved", config)
}

func (h *WorkflowHandler) SaveConfig(c *gin.Context) {
	var req dto.SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	config, err := h.service.SaveConfig(c.Request.Context(), projectID, req.Variables)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "config saved", config)
}

// ConfigTemplates returns the starter variable sets the frontend offers
// when a project has no saved configuration yet. Each variable carries a
// fresh id so the frontend can edit the set in place.
func (h *WorkflowHandler) ConfigTemplates(c *gin.Context) {
	templates := []gin.H{
		{
			"name": "SSH Connection",
			"variables": []gin.H{
				{
					"id":            uuid.New().String(),
					"variable_name": "ssh_host",
					"key":           "ssh_host",
					"value":         "192.168.1.9",
					"type":          "ssh_host",
					"description":   "SSH server hostname or IP address",
				},
				{
					"id":            uuid.New().String(),
					"variable_name": "ssh_port",
					"key":           "ssh_port",
					"value":         "22",
					"type":          "ssh_port",
					"description":   "SSH server port number",
				},
			},
		},
		{
			"name": "Document Processing",
			"variables": []gin.H{
				{
					"id":            uuid.New().String(),
					"variable_name": "document",
					"key":           "document",
					"value":         "http://localhost:5000/api/project/document/download?document_id=current",
					"type":          "document",
					"description":   "Document URL for workflow processing",
				},
			},
		},
	}
	respond(c, http.StatusOK, "templates retrieved", templates)
}
