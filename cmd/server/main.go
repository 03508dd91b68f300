package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/ai"
	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/config"
	"github.com/abinmathew/leave-letter-assistant/internal/delivery"
	"github.com/abinmathew/leave-letter-assistant/internal/directory"
	"github.com/abinmathew/leave-letter-assistant/internal/document"
	"github.com/abinmathew/leave-letter-assistant/internal/letter"
	"github.com/abinmathew/leave-letter-assistant/internal/server"
	"github.com/abinmathew/leave-letter-assistant/internal/session"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/abinmathew/leave-letter-assistant/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env before config resolution so env binds pick it up.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Leave Letter Assistant",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Reference data is loaded once and immutable for the process
	// lifetime; failure here is fatal before the wizard can start.
	dir, err := directory.Load(cfg.Reference.FacultyPath, logger)
	if err != nil {
		logger.Fatal("Failed to load faculty directory", zap.Error(err))
	}
	cat, err := catalog.Load(cfg.Reference.TemplatesPath, logger)
	if err != nil {
		logger.Fatal("Failed to load template catalog", zap.Error(err))
	}

	engine := wizard.NewEngine(dir, time.Now, cfg.Session.MaxRoster, logger)

	generator := ai.NewGenerator(ai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
	}, logger)

	composer := letter.NewComposer(cat, dir, generator, letter.Institution{
		Name:  cfg.Institution.Name,
		Place: cfg.Institution.Place,
	}, time.Now, logger)

	renderer := document.NewRenderer(logger)

	store := session.NewStore(engine, cfg.Session.TTL, time.Now, logger)
	lifecycle := session.NewLifecycle(store, composer, renderer, logger)

	dispatcher := delivery.NewDispatcher(delivery.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		Sender:    cfg.SMTP.Sender,
		Recipient: cfg.SMTP.Recipient,
	}, logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.New(engine, lifecycle, dispatcher, cat, cfg.AI.Timeout, logger).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
