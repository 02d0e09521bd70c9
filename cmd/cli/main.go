package main

import (
	"context"
	"log"
	"os"

	"rd-assistant/internal/cli"
	"rd-assistant/internal/config"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/pkg/llm"
	"rd-assistant/pkg/llm/factory"
)

func main() {
	cfg := config.Load()

	// Console sessions keep the terminal clean; logs go to the file only.
	sysLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer sysLogger.Sync()

	provider, err := factory.NewLLMProvider(llm.Config{
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

	app := cli.New(cfg, provider, sysLogger, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("session ended with error: %v", err)
	}
}
