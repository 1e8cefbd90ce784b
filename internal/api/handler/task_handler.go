package handler

import (
	"encoding/json"
	"net/http"

	"testops/internal/api/dto"
	"testops/internal/domain"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	projectID, ok := parseID(c, "project_id", req.ProjectID)
	if !ok {
		return
	}

	contextJSON, _ := json.Marshal(req.Context)
	task := domain.NewTask(projectID, req.TaskName, req.URL, datatypes.JSON(contextJSON))
	if err := h.service.Create(c.Request.Context(), task); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "task created", task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := queryID(c, "task_id")
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task retrieved", task)
}

func (h *TaskHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "project_id")
	if !ok {
		return
	}
	tasks, err := h.service.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "tasks retrieved", tasks)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, ok := parseID(c, "task_id", req.TaskID)
	if !ok {
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, req.UpdatedData)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task updated", task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := queryID(c, "task_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task deleted", nil)
}

// Run executes the task synchronously. A second run while one is in
// flight yields a 409 from the claim guard.
func (h *TaskHandler) Run(c *gin.Context) {
	id, ok := queryID(c, "task_id")
	if !ok {
		return
	}
	task, err := h.service.Run(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "task executed", task)
}
