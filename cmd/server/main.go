package main

import (
	"context"
	"flag"
	"log"

	"testops/internal/api"
	"testops/internal/browser"
	"testops/internal/config"
	"testops/internal/core/ports"
	"testops/internal/core/postgres/repository"
	"testops/internal/dify"
	"testops/internal/domain"
	redisinfra "testops/internal/infrastructure/redis"
	"testops/internal/service"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	err = db.AutoMigrate(
		&domain.Project{},
		&domain.Task{},
		&domain.Scenario{},
		&domain.TestCase{},
		&domain.TestRun{},
		&domain.Bug{},
		&domain.BugFix{},
		&domain.Workflow{},
		&domain.WorkflowExecution{},
		&domain.WorkflowConfig{},
		&domain.Document{},
	)
	if err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	// The event bus is optional: with no redis address the server runs
	// without status broadcasting.
	var bus *redisinfra.EventBus
	if cfg.Redis.Addr != "" {
		client, err := redisinfra.NewClient(cfg.Redis.Addr)
		if err != nil {
			logger.Warn("redis unreachable, event bus disabled", zap.Error(err))
		} else {
			bus = redisinfra.NewEventBus(client)
		}
	}

	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	scenarioRepo := repository.NewScenarioRepository(db)
	testCaseRepo := repository.NewTestCaseRepository(db)
	testRunRepo := repository.NewTestRunRepository(db)
	bugRepo := repository.NewBugRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	configRepo := repository.NewConfigRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	engine := dify.NewClient(cfg.Dify.BaseURL, cfg.Dify.RequestTimeout(), logger.Named("dify"))
	runner := browser.NewRunner(
		cfg.Browser.Headless,
		cfg.Browser.ProfileDir,
		cfg.Browser.NavigationTimeout(),
		cfg.Codex.BaseURL,
		logger.Named("browser"),
	)

	scenarioSvc := service.NewScenarioService(scenarioRepo, testCaseRepo, logger.Named("scenario"))

	services := api.Services{
		Projects:  service.NewProjectService(projectRepo, taskRepo, scenarioRepo, cfg.Projects.Root, logger.Named("project")),
		Tasks:     service.NewTaskService(taskRepo, runner, busOrNil(bus), cfg.Retry, cfg.Projects.Root, logger.Named("task")),
		Scenarios: scenarioSvc,
		TestRuns:  service.NewTestRunService(testRunRepo, testCaseRepo, logger.Named("test_run")),
		Bugs:      service.NewBugService(bugRepo, logger.Named("bug")),
		Workflows: service.NewWorkflowService(workflowRepo, executionRepo, configRepo, engine, scenarioSvc, busOrNil(bus), cfg.Dify.User, logger.Named("workflow")),
		Documents: service.NewDocumentService(documentRepo, cfg.Projects.Root, logger.Named("document")),
		Codex:     service.NewCodexService(runner, logger.Named("codex")),
	}

	if bus != nil {
		go logExecutionEvents(context.Background(), bus, logger)
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}
	return zapCfg.Build()
}

// busOrNil keeps the typed-nil pitfall out of the services: a nil
// *EventBus must become a nil interface.
func busOrNil(bus *redisinfra.EventBus) ports.EventBus {
	if bus == nil {
		return nil
	}
	return bus
}

// logExecutionEvents mirrors execution status transitions into the log so
// an operator can follow workflow runs without polling the API.
func logExecutionEvents(ctx context.Context, bus *redisinfra.EventBus, logger *zap.Logger) {
	events, err := bus.SubscribeExecutionStatus(ctx)
	if err != nil {
		logger.Warn("could not subscribe to execution events", zap.Error(err))
		return
	}
	for event := range events {
		logger.Info("execution status changed",
			zap.String("execution_id", event.ExecutionID.String()),
			zap.String("project_id", event.ProjectID.String()),
			zap.String("status", string(event.Status)),
			zap.String("error", event.Error))
	}
}
