package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/vbonduro/mealcam/internal/cli"
	"github.com/vbonduro/mealcam/internal/config"
	"github.com/vbonduro/mealcam/internal/credential"
	"github.com/vbonduro/mealcam/internal/db"
	"github.com/vbonduro/mealcam/internal/ledger"
	"github.com/vbonduro/mealcam/internal/logging"
	"github.com/vbonduro/mealcam/internal/photostore/local"
	"github.com/vbonduro/mealcam/internal/service"
	"github.com/vbonduro/mealcam/internal/store"
	"github.com/vbonduro/mealcam/internal/vision"
	claudevision "github.com/vbonduro/mealcam/internal/vision/claude"
	ollamavision "github.com/vbonduro/mealcam/internal/vision/ollama"
	openaivision "github.com/vbonduro/mealcam/internal/vision/openai"
)

var version = "dev"

func main() {
	var c cli.CLI
	kctx := kong.Parse(&c,
		kong.Name("mealcam"),
		kong.Description("Photograph a meal, log its nutrition, and review daily totals."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	slots := store.NewSlotStore(database)

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}

	svc := service.NewMealService(
		ledger.New(slots, logger, ledger.WithLocation(loc)),
		newCredentialStore(cfg, slots, logger),
		newRecognizer(cfg, logger),
		photoStg,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return kctx.Run(&cli.Context{
		Ctx:        ctx,
		Service:    svc,
		PhotoStore: photoStg,
		ListenAddr: cfg.ListenAddr,
		Logger:     logger,
		Out:        os.Stdout,
	})
}

func newRecognizer(cfg *config.Config, logger *slog.Logger) vision.Recognizer {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeRecognizer(cfg.ClaudeModel, cfg.ClaudeBaseURL)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaRecognizer(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("using OpenAI vision backend", "model", cfg.OpenAIModel)
		return openaivision.NewOpenAIRecognizer(cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
}

func newCredentialStore(cfg *config.Config, slots *store.SlotStore, logger *slog.Logger) credential.Store {
	if cfg.CredentialBackend == "keyring" {
		logger.Debug("using OS keyring for the API key")
		return credential.NewKeyringStore()
	}
	return credential.NewSlotStore(slots)
}
