package handler

import (
	"encoding/json"
	"net/http"

	"testops/internal/api/dto"
	"testops/internal/domain"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScenarioHandler struct {
	service service.ScenarioService
}

func NewScenarioHandler(svc service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{service: svc}
}

func scenarioFromPayload(projectID uuid.UUID, payload dto.ScenarioPayload) domain.Scenario {
	scenario := domain.Scenario{
		ScenarioID:  payload.ID,
		ProjectID:   projectID,
		Name:        payload.Name,
		Description: payload.Description,
		Priority:    payload.Priority,
		Version:     payload.Version,
	}
	for _, casePayload := range payload.TestCases {
		steps, _ := json.Marshal(casePayload.Steps)
		scenario.TestCases = append(scenario.TestCases, domain.TestCase{
			CaseID:         casePayload.ID,
			ScenarioID:     payload.ID,
			ProjectID:      projectID,
			Title:          casePayload.Title,
			Description:    casePayload.Description,
			Steps:          datatypes.JSON(steps),
			ExpectedResult: casePayload.ExpectedResult,
			Status:         domain.TestCaseStatus(casePayload.Status),
			Version:        casePayload.Version,
		})
	}
	return scenario
}

// Save replaces the project's scenario set wholesale.
func (h *ScenarioHandler) Save(c *gin.Context) {
	var req dto.SaveScenariosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}

	scenarios := make([]domain.Scenario, 0, len(req.Scenarios))
	for _, payload := range req.Scenarios {
		scenarios = append(scenarios, scenarioFromPayload(projectID, payload))
	}
	if err := h.service.SaveAll(c.Request.Context(), projectID, scenarios); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenarios saved", gin.H{"count": len(scenarios)})
}

// SaveFromWorkflow transforms a raw engine output and appends its
// scenarios to the project.
func (h *ScenarioHandler) SaveFromWorkflow(c *gin.Context) {
	var req dto.SaveFromWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	saved, err := h.service.SaveFromOutput(c.Request.Context(), projectID, req.ExecutionID, req.Output)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenarios saved", saved)
}

func (h *ScenarioHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarios, err := h.service.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenarios retrieved", scenarios)
}

func (h *ScenarioHandler) Get(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	if scenarioID == "" {
		respond(c, http.StatusBadRequest, "scenario_id is required", nil)
		return
	}
	scenario, err := h.service.Get(c.Request.Context(), projectID, scenarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenario retrieved", scenario)
}

func (h *ScenarioHandler) Create(c *gin.Context) {
	var req dto.CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	scenario := scenarioFromPayload(projectID, req.Scenario)
	if err := h.service.Create(c.Request.Context(), &scenario); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "scenario created", scenario)
}

func (h *ScenarioHandler) Update(c *gin.Context) {
	var req dto.UpdateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	if err := h.service.Update(c.Request.Context(), projectID, req.ScenarioID, req.UpdatedData); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenario updated", nil)
}

func (h *ScenarioHandler) Delete(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	if scenarioID == "" {
		respond(c, http.StatusBadRequest, "scenario_id is required", nil)
		return
	}
	if err := h.service.Delete(c.Request.Context(), projectID, scenarioID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "scenario deleted", nil)
}

func (h *ScenarioHandler) CreateTestCase(c *gin.Context) {
	var req dto.CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}

	steps, _ := json.Marshal(req.TestCase.Steps)
	testCase := domain.TestCase{
		CaseID:         req.TestCase.ID,
		ScenarioID:     req.ScenarioID,
		ProjectID:      projectID,
		Title:          req.TestCase.Title,
		Description:    req.TestCase.Description,
		Steps:          datatypes.JSON(steps),
		ExpectedResult: req.TestCase.ExpectedResult,
		Status:         domain.TestCaseStatus(req.TestCase.Status),
		Version:        req.TestCase.Version,
	}
	if err := h.service.CreateTestCase(c.Request.Context(), &testCase); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "test case created", testCase)
}

func (h *ScenarioHandler) ListTestCases(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	if scenarioID == "" {
		respond(c, http.StatusBadRequest, "scenario_id is required", nil)
		return
	}
	testCases, err := h.service.ListTestCases(c.Request.Context(), projectID, scenarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test cases retrieved", testCases)
}

func (h *ScenarioHandler) GetTestCase(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	caseID := c.Query("test_case_id")
	if scenarioID == "" || caseID == "" {
		respond(c, http.StatusBadRequest, "scenario_id and test_case_id are required", nil)
		return
	}
	testCase, err := h.service.GetTestCase(c.Request.Context(), projectID, scenarioID, caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test case retrieved", testCase)
}

func (h *ScenarioHandler) UpdateTestCase(c *gin.Context) {
	var req dto.UpdateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	if err := h.service.UpdateTestCase(c.Request.Context(), projectID, req.ScenarioID, req.TestCaseID, req.UpdatedData); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test case updated", nil)
}

func (h *ScenarioHandler) DeleteTestCase(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	scenarioID := c.Query("scenario_id")
	caseID := c.Query("test_case_id")
	if scenarioID == "" || caseID == "" {
		respond(c, http.StatusBadRequest, "scenario_id and test_case_id are required", nil)
		return
	}
	if err := h.service.DeleteTestCase(c.Request.Context(), projectID, scenarioID, caseID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "test case deleted", nil)
}
