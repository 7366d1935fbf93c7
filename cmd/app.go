package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/content"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/migrations"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/repository"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/handlers"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/server"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.String("db_driver", cfg.Database.Driver))

	dbConn, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Error("connect to database", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	if err = migrations.Up(ctx, dbConn.DB, cfg.Database.Dialect()); err != nil {
		slog.Error("apply migrations", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	bank, err := content.New()
	if err != nil {
		slog.Error("load content bank", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	documentRepo := repository.NewDocumentRepo(dbConn)
	subscriptionRepo := repository.NewSubscriptionRepo(dbConn)

	clock := engine.SystemClock{}

	store := memory.NewDocumentStore(documentRepo)
	registry := memory.NewRoomRegistry()
	wsConnRepo := memory.NewWSConnectionRepository()

	entitlementUsecase := usecase.NewEntitlementUsecase(cfg, subscriptionRepo, clock)
	identityUsecase := usecase.NewIdentityUsecase([]byte(cfg.JWTSecret), cfg.Game.GuestTokenTTL, clock)
	roomUsecase := usecase.NewRoomUsecase(
		bank,
		clock,
		usecase.NewTickerCreator(),
		cfg.Game.Tick,
		store,
		registry,
		entitlementUsecase,
	)

	restored, err := roomUsecase.Restore(ctx, documentRepo, cfg.Game.RestoreGrace)
	if err != nil {
		slog.Error("restore rooms", slog.Any(constant.Error, err))
	} else if restored > 0 {
		slog.Info("restored rooms", slog.Int("count", restored))
	}

	gameUsecase := usecase.NewGameUsecase(roomUsecase)
	presenceUsecase := usecase.NewPresenceUsecase(roomUsecase)

	authHandler := handlers.NewAuthHandler(cfg, identityUsecase, entitlementUsecase)
	roomHandler := handlers.NewRoomHandler(roomUsecase)
	healthHandler := handlers.NewHealthHandler(dbConn, wsConnRepo)
	wsHandler := handlers.NewWebSocketHandler(cfg, roomUsecase, gameUsecase, presenceUsecase, store, wsConnRepo)

	echoSrv := server.New(cfg, identityUsecase, authHandler, roomHandler, healthHandler, wsHandler)
	metricsSrv := metric.NewServer()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", slog.String("port", cfg.Port))

		if err := echoSrv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		if err := metricsSrv.Start(":" + cfg.MetricPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		slog.Info("Shutting down servers")

		// Graceful shutdown
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()

		if err := echoSrv.Shutdown(timeoutCtx); err != nil {
			slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
		}

		if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
			slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
		}

		roomUsecase.Shutdown()

		return nil
	})

	if err = g.Wait(); err != nil {
		slog.Error("server failed", slog.Any(constant.Error, err))
		os.Exit(1)
	}
}
