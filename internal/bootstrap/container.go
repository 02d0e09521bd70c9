package bootstrap

import (
	"log"

	"rd-assistant/internal/config"
	"rd-assistant/internal/controller"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/internal/repository"
	"rd-assistant/internal/repository/archive"
	"rd-assistant/internal/repository/file"
	"rd-assistant/internal/repository/memory"
	"rd-assistant/internal/service"
	"rd-assistant/pkg/llm"
	"rd-assistant/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(llm.Config{
		Provider:       cfg.Llm.Provider,
		Model:          cfg.Llm.Model,
		APIKey:         cfg.Llm.APIKey,
		BaseURL:        cfg.Llm.BaseURL,
		APIVersion:     cfg.Llm.APIVersion,
		DeploymentName: cfg.Llm.DeploymentName,
		Temperature:    cfg.Llm.Temperature,
		MaxTokens:      cfg.Llm.MaxTokens,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Llm.Provider, cfg.Llm.Model)

	// 4. Storage
	sessionRepo := memory.NewSessionRepository()
	sessionStorage := file.NewSessionStorage(cfg.Session.SaveDir)

	var archiveStore repository.ISessionArchive
	if db != nil {
		archiveRepo, archiveErr := archive.NewRepository(db)
		if archiveErr != nil {
			log.Printf("[WARN] Session archive unavailable: %v", archiveErr)
		} else {
			archiveStore = archiveRepo
		}
	}

	// 5. Services
	var publisherService service.IPublisherService
	if cfg.Session.Autosave {
		publisherService = service.NewPublisherService(cfg.App.AutosaveTopic, pubSub)
	}

	autosaveLogger := logger.NewIsolatedLogger("logs/autosave.log")
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.AutosaveTopic,
		sessionRepo,
		sessionStorage,
		archiveStore,
		autosaveLogger,
	)

	analyzerService := service.NewAnalyzerService(llmProvider, sysLogger, cfg.Llm.Temperature, cfg.Llm.MaxTokens)
	sessionService := service.NewSessionService(
		sessionRepo,
		sessionStorage,
		archiveStore,
		analyzerService,
		publisherService,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		SessionController: controller.NewSessionController(sessionService),

		ConsumerService: consumerService,
	}
}
