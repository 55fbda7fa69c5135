package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/assistant"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/events"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/repository"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/routes"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/types"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/verification"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background verification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logger.New(cfg.Env)
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) error {
	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	policies, err := types.LoadPolicyTable(cfg.PolicyFile)
	if err != nil {
		return err
	}

	publisher := events.NewNopPublisher()
	if cfg.Redis.Addr != "" {
		publisher, err = events.NewRedisPublisher(log, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			return err
		}
	}
	defer publisher.Close()

	logs := repository.NewActivityRepository(db)
	users := repository.NewUserRepository(db)

	engine, err := verification.NewEngine(
		policies,
		verification.DefaultVerifiers(verification.NewClient(cfg.MLServiceURL, nil)),
		logs,
		verification.WithTimeout(cfg.VerifyTimeout),
		verification.WithPublisher(publisher),
		verification.WithLogger(log),
	)
	if err != nil {
		return err
	}
	dispatcher := verification.NewDispatcher(engine, log)

	points := services.NewPointsService(logs, users)
	userService := services.NewUserService(users, logs, points, log)
	reviewService := services.NewReviewService(logs, publisher, log, cfg.Admin.AllowBonusPoints)
	activityService := services.NewActivityService(logs, policies, dispatcher, log)
	if _, err := activityService.ResumePending(ctx); err != nil {
		return err
	}

	adminController, err := controllers.NewAdminController(reviewService, userService, points, cfg, log)
	if err != nil {
		return err
	}
	handlers := routes.Controllers{
		Activity:    controllers.NewActivityController(activityService),
		Admin:       adminController,
		User:        controllers.NewUserController(userService),
		Leaderboard: controllers.NewLeaderboardController(points),
		Validation:  controllers.NewValidationController(userService),
	}
	if cfg.R2.Enabled() {
		handlers.Upload = controllers.NewUploadController(cfg.R2, log)
	} else {
		log.Info("bucket credentials missing, upload routes disabled")
	}
	if cfg.Gemini.APIKey != "" {
		chat, err := assistant.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn("assistant disabled", "error", err)
		} else {
			handlers.Chat = controllers.NewChatController(chat, log)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(log, cfg.CORSOrigins, cfg.JWTSecret, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env, "categories", len(policies.Categories()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("verifications still running at shutdown were sent to manual review", "error", err)
	}
	return nil
}
