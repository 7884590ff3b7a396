package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dealdesk/backend/internal/config"
	"github.com/dealdesk/backend/internal/core/services"
	"github.com/dealdesk/backend/internal/infrastructure/crawler"
	"github.com/dealdesk/backend/internal/infrastructure/db"
	"github.com/dealdesk/backend/internal/infrastructure/llm"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
	"github.com/dealdesk/backend/internal/infrastructure/websearch"
	"github.com/dealdesk/backend/internal/transport/http/handlers"
	httpmw "github.com/dealdesk/backend/internal/transport/http/middleware"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

// SetupRoutes wires repositories, clients and services and mounts the API.
// It returns the research service and the sweeper so cmd/server can start
// the worker pool and the reconciliation loop.
func SetupRoutes(app *fiber.App, cfg RouterConfig) (*services.ResearchService, *services.Sweeper) {
	// Repositories
	taskRepo := db.NewResearchTaskRepository(cfg.DB, cfg.Logger)

	// External clients
	fastChat := llm.NewChatClient("fast", cfg.Config.LLM.Fast, cfg.Logger)
	qualityChat := llm.NewChatClient("quality", cfg.Config.LLM.Quality, cfg.Logger)
	searchClient := websearch.NewDuckDuckGoClient(cfg.Config.Search, cfg.Logger)
	pageCrawler := crawler.NewHTTPCrawler(cfg.Config.Crawler, cfg.Logger)

	// Pipeline stages
	planner := services.NewStrategyPlanner(fastChat, cfg.Logger)
	gatherer := services.NewEvidenceGatherer(searchClient, pageCrawler, cfg.Logger)
	synthesizer := services.NewAnalysisSynthesizer(qualityChat, cfg.Logger)

	researchService := services.NewResearchService(services.ResearchServiceConfig{
		Repo:        taskRepo,
		Planner:     planner,
		Gatherer:    gatherer,
		Synthesizer: synthesizer,
		QualityChat: qualityChat,
		Logger:      cfg.Logger,
		QueueSize:   cfg.Config.Research.QueueSize,
		Workers:     cfg.Config.Research.Workers,
		TaskTimeout: cfg.Config.Research.TaskTimeout,
	})

	sweeper := services.NewSweeper(taskRepo, cfg.Logger, cfg.Config.Research.StaleAfter, cfg.Config.Research.SweepInterval)

	// Handlers
	researchHandler := handlers.NewResearchHandler(researchService, cfg.Logger)
	watchHandler := handlers.NewResearchWatchHandler(researchService, cfg.Logger)

	api := app.Group("/api", httpmw.AdminAuth(cfg.Config))

	research := api.Group("/research")
	research.Post("/", researchHandler.Submit)
	research.Get("/", researchHandler.List)
	research.Get("/:id", researchHandler.Get)
	research.Post("/:id/swot", researchHandler.ExtractSwot)

	research.Use("/:id/watch", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	research.Get("/:id/watch", websocket.New(watchHandler.Handle))

	return researchService, sweeper
}
