// Package api assembles the gin router: envelope handlers per resource,
// CORS, request metrics and the health/metrics endpoints.
package api

import (
	"net/http"

	"testops/internal/api/handler"
	"testops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Projects  service.ProjectService
	Tasks     service.TaskService
	Scenarios service.ScenarioService
	TestRuns  service.TestRunService
	Bugs      service.BugService
	Workflows service.WorkflowService
	Documents service.DocumentService
	Codex     service.CodexService
}

func NewRouter(services Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.CORS(allowedOrigins))
	router.Use(handler.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	projects := handler.NewProjectHandler(services.Projects)
	tasks := handler.NewTaskHandler(services.Tasks)
	scenarios := handler.NewScenarioHandler(services.Scenarios)
	testRuns := handler.NewTestRunHandler(services.TestRuns)
	bugs := handler.NewBugHandler(services.Bugs)
	workflows := handler.NewWorkflowHandler(services.Workflows)
	documents := handler.NewDocumentHandler(services.Documents)
	codex := handler.NewCodexHandler(services.Codex)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		apiGroup.POST("/project/create", projects.Create)
		apiGroup.GET("/project/get", projects.Get)
		apiGroup.GET("/project/list", projects.List)
		apiGroup.PUT("/project/update", projects.Update)
		apiGroup.DELETE("/project/delete", projects.Delete)

		apiGroup.POST("/task/create", tasks.Create)
		apiGroup.GET("/task/get", tasks.Get)
		apiGroup.GET("/task/list", tasks.List)
		apiGroup.PUT("/task/update", tasks.Update)
		apiGroup.DELETE("/task/delete", tasks.Delete)
		apiGroup.POST("/task/run", tasks.Run)

		apiGroup.POST("/scenario/save", scenarios.Save)
		apiGroup.POST("/scenario/save_from_workflow", scenarios.SaveFromWorkflow)
		apiGroup.GET("/scenario/list", scenarios.List)
		apiGroup.GET("/scenario/get", scenarios.Get)
		apiGroup.POST("/scenario/create", scenarios.Create)
		apiGroup.PUT("/scenario/update", scenarios.Update)
		apiGroup.DELETE("/scenario/delete", scenarios.Delete)

		apiGroup.POST("/test_case/create", scenarios.CreateTestCase)
		apiGroup.GET("/test_case/list", scenarios.ListTestCases)
		apiGroup.GET("/test_case/get", scenarios.GetTestCase)
		apiGroup.PUT("/test_case/update", scenarios.UpdateTestCase)
		apiGroup.DELETE("/test_case/delete", scenarios.DeleteTestCase)

		apiGroup.POST("/test_run/record", testRuns.Record)
		apiGroup.GET("/test_run/by_case", testRuns.ByCase)
		apiGroup.GET("/test_run/by_scenario", testRuns.ByScenario)
		apiGroup.GET("/test_run/by_project", testRuns.ByProject)
		apiGroup.GET("/test_run/latest", testRuns.Latest)
		apiGroup.GET("/test_run/get", testRuns.Get)
		apiGroup.PUT("/test_run/update", testRuns.Update)
		apiGroup.DELETE("/test_run/delete", testRuns.Delete)

		apiGroup.POST("/bug/create", bugs.Create)
		apiGroup.POST("/bug/batch", bugs.CreateBatch)
		apiGroup.GET("/bug/list", bugs.List)
		apiGroup.GET("/bug/get", bugs.Get)
		apiGroup.PUT("/bug/update", bugs.Update)
		apiGroup.DELETE("/bug/delete", bugs.Delete)
		apiGroup.POST("/bug/fix/create", bugs.CreateFix)
		apiGroup.POST("/bug/fix/verify", bugs.VerifyFix)
		apiGroup.GET("/bug/fix/list", bugs.ListFixes)

		apiGroup.POST("/document/upload", documents.Upload)
		apiGroup.GET("/document/list", documents.List)
		apiGroup.GET("/document/detail", documents.Get)
		apiGroup.GET("/document/download", documents.Download)
		apiGroup.DELETE("/document/delete", documents.Delete)

		apiGroup.POST("/workflow/create", workflows.Create)
		apiGroup.GET("/workflow/get", workflows.Get)
		apiGroup.GET("/workflow/list", workflows.List)
		apiGroup.PUT("/workflow/update", workflows.Update)
		apiGroup.DELETE("/workflow/delete", workflows.Delete)
		apiGroup.GET("/workflow/info", workflows.Info)
		apiGroup.GET("/workflow/parameters", workflows.Parameters)
		apiGroup.POST("/workflow/run", workflows.Run)
		apiGroup.GET("/workflow/execution/status", workflows.ExecutionStatus)
		apiGroup.GET("/workflow/execution/history", workflows.ExecutionHistory)
		apiGroup.POST("/workflow/execution/cancel", workflows.CancelExecution)

		apiGroup.GET("/config/get", workflows.GetConfig)
		apiGroup.POST("/config/save", workflows.SaveConfig)
		apiGroup.GET("/config/templates", workflows.ConfigTemplates)

		apiGroup.GET("/codex/repos", codex.ListRepositories)
		apiGroup.POST("/codex/submit", codex.SubmitPrompt)
	}

	return router
}
