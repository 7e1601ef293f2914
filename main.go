package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"traffic_violation/internal/api/handler"
	"traffic_violation/internal/api/middleware"
	"traffic_violation/internal/config"
	"traffic_violation/internal/service"
)

const lifecycleTimeout = 30 * time.Second

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newAWSConfig,
			newRepositories,
			newIdentityProvider,
			newAuthService,
			newVisionClient,
			newGenerator,
			service.NewLabelExtractor,
			newLPRService,
			newViolationService,
			service.NewRecordService,
			newNotifier,
			newEvidenceStore,
			newEventPublisher,
			service.NewReportService,
			middleware.NewAuthMiddleware,
			handler.NewSessionManager,
			newRouter,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error stopping app:", err)
	}
}
