package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"testops/internal/api/dto"
	"testops/internal/domain"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type TestRunHandler struct {
	service service.TestRunService
}

func NewTestRunHandler(svc service.TestRunService) *TestRunHandler {
	return &TestRunHandler{service: svc}
}

func (h *TestRunHandler) Record(c *gin.Context) {
	var req dto.RecordTestRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}

	run := domain.NewTestRun(projectID, req.TestCaseID, req.ScenarioID)
	run.Result = req.Result
	run.Notes = req.Notes
	run.ExecutedBy = req.ExecutedBy
	if req.Details != nil {
		details, _ := json.Marshal(req.Details)
		run.Details = datatypes.JSON(details)
	}

	if err := h.service.Record(c.Request.Context(), run); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "test run recorded", run)
}

func (h *TestRunHandler) ByCase(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	caseID := c.Query("test_case_id")
	if caseID == "" {
		respond(c, http.StatusBadRequest, "test_case_id is required", nil)
		return
	}
	runs, err := h.service.ListByCase(c.Request.Context(), projectID, caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test runs retrieved", runs)
}

func (h *TestRunHandler) ByScenario(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	if scenarioID == "" {
		respond(c, http.StatusBadRequest, "scenario_id is required", nil)
		return
	}
	runs, err := h.service.ListByScenario(c.Request.Context(), projectID, scenarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test runs retrieved", runs)
}

func (h *TestRunHandler) ByProject(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}
	runs, err := h.service.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test runs retrieved", runs)
}

func (h *TestRunHandler) Latest(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	caseID := c.Query("test_case_id")
	if caseID == "" {
		respond(c, http.StatusBadRequest, "test_case_id is required", nil)
		return
	}
	run, err := h.service.LatestForCase(c.Request.Context(), projectID, caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "latest run retrieved", run)
}

func (h *TestRunHandler) Get(c *gin.Context) {
	runID, ok := queryID(c, "run_id")
	if !ok {
		return
	}
	run, err := h.service.Get(c.Request.Context(), runID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test run retrieved", run)
}

func (h *TestRunHandler) Update(c *gin.Context) {
	var req struct {
		RunID       string         `json:"run_id" binding:"required"`
		UpdatedData map[string]any `json:"updated_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	runID, ok := parseID(c, "run_id", req.RunID)
	if !ok {
		return
	}
	if err := h.service.Update(c.Request.Context(), runID, req.UpdatedData); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test run updated", nil)
}

func (h *TestRunHandler) Delete(c *gin.Context) {
	runID, ok := queryID(c, "run_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), runID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test run deleted", nil)
}
