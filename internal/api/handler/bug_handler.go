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

type BugHandler struct {
	service service.BugService
}

func NewBugHandler(svc service.BugService) *BugHandler {
	return &BugHandler{service: svc}
}

func bugFromRequest(projectID uuid.UUID, req dto.CreateBugRequest) (*domain.Bug, error) {
	bug := domain.NewBug(projectID, req.Summary, req.Description, req.Severity)
	bug.ScenarioID = req.ScenarioID
	bug.CreatedBy = req.CreatedBy

	if req.TaskID != "" {
		taskID, err := uuid.Parse(req.TaskID)
		if err != nil {
			return nil, err
		}
		bug.TaskID = &taskID
	}
	if req.Images != nil {
		images, _ := json.Marshal(req.Images)
		bug.Images = datatypes.JSON(images)
	}
	if req.Environment != nil {
		environment, _ := json.Marshal(req.Environment)
		bug.Environment = datatypes.JSON(environment)
	}
	return bug, nil
}

func (h *BugHandler) Create(c *gin.Context) {
	var req dto.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}
	bug, err := bugFromRequest(projectID, req)
	if err != nil {
		respond(c, http.StatusBadRequest, "invalid task_id", nil)
		return
	}
	if err := h.service.Create(c.Request.Context(), bug); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "bug created", bug)
}

func (h *BugHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBugBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}

	bugs := make([]domain.Bug, 0, len(req.Bugs))
	for _, bugReq := range req.Bugs {
		bug, err := bugFromRequest(projectID, bugReq)
		if err != nil {
			respond(c, http.StatusBadRequest, "invalid task_id", nil)
			return
		}
		bugs = append(bugs, *bug)
	}
	if err := h.service.CreateBatch(c.Request.Context(), bugs); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "bugs created", gin.H{"count": len(bugs)})
}

func (h *BugHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}

	filters := map[string]any{}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if severity := c.Query("severity"); severity != "" {
		filters["severity"] = severity
	}

	bugs, err := h.service.ListByProject(c.Request.Context(), projectID, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "bugs retrieved", bugs)
}

func (h *BugHandler) Get(c *gin.Context) {
	bugID, ok := queryID(c, "bug_id")
	if !ok {
		return
	}
	bug, err := h.service.Get(c.Request.Context(), bugID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "bug retrieved", bug)
}

func (h *BugHandler) Update(c *gin.Context) {
	var req dto.UpdateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	bugID, ok := parseID(c, "bug_id", req.BugID)
	if !ok {
		return
	}
	bug, err := h.service.Update(c.Request.Context(), bugID, req.UpdatedData)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "bug updated", bug)
}

func (h *BugHandler) Delete(c *gin.Context) {
	bugID, ok := queryID(c, "bug_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), bugID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "bug deleted", nil)
}

func (h *BugHandler) CreateFix(c *gin.Context) {
	var req dto.CreateFixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	bugID, ok := parseID(c, "bug_id", req.BugID)
	if !ok {
		return
	}

	fix := domain.NewBugFix(bugID, req.Description, req.FixedBy)
	if req.Images != nil {
		images, _ := json.Marshal(req.Images)
		fix.Images = datatypes.JSON(images)
	}
	if err := h.service.AddFix(c.Request.Context(), fix); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "fix recorded", fix)
}

func (h *BugHandler) VerifyFix(c *gin.Context) {
	var req dto.VerifyFixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	fixID, ok := parseID(c, "fix_id", req.FixID)
	if !ok {
		return
	}
	fix, err := h.service.VerifyFix(c.Request.Context(), fixID, *req.Verified, req.VerifiedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "fix verification recorded", fix)
}

func (h *BugHandler) ListFixes(c *gin.Context) {
	bugID, ok := queryID(c, "bug_id")
	if !ok {
		return
	}
	fixes, err := h.service.ListFixes(c.Request.Context(), bugID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "fixes retrieved", fixes)
}
