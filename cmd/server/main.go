package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotonoha-dev/booking_api/internal/app"
	"github.com/kotonoha-dev/booking_api/internal/auth"
	"github.com/kotonoha-dev/booking_api/internal/calendar"
	"github.com/kotonoha-dev/booking_api/internal/config"
	"github.com/kotonoha-dev/booking_api/internal/controller/httpapi"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/notify"
	"github.com/kotonoha-dev/booking_api/internal/repository"
	"github.com/kotonoha-dev/booking_api/internal/schedule"
	"github.com/kotonoha-dev/booking_api/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting booking API",
		"environment", cfg.Environment,
		"port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	store := repository.NewPgStore(pool)
	gen := schedule.NewGenerator(cfg.ScheduleOpenHour, cfg.ScheduleCloseHour, cfg.ScheduleBreakHour)

	// Внешний календарь и уведомления опциональны:
	// без конфигурации ядро работает, эффекты просто не выполняются
	var mirror app.CalendarMirror
	var busy service.BusySource = noBusySource{}
	if cfg.GoogleCalendarID != "" {
		client := calendar.NewClient(cfg.GoogleAPIBase, cfg.GoogleCalendarID, cfg.GoogleAccessToken, loc, logger)
		mirror = client
		busy = client
	} else {
		logger.Warn("GOOGLE_CALENDAR_ID is not set, external calendar is disabled")
	}

	var notifier app.AdminNotifier
	if cfg.TelegramToken != "" && cfg.AdminChatID != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.AdminChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
	} else {
		logger.Warn("TELEGRAM_TOKEN or ADMIN_CHAT_ID is not set, admin notifications are disabled")
	}

	sink := app.NewEffectSink(mirror, notifier, store.Bookings(), logger)
	sink.Start()
	defer sink.Stop()

	availabilityService := service.NewAvailabilityService(
		store, busy, gen, loc,
		time.Duration(cfg.LeadTimeMinutes)*time.Minute,
		logger,
	)
	bookingService := service.NewBookingService(store, gen, loc, sink, logger)
	userService := service.NewUserService(store, logger)
	referenceService := service.NewReferenceService(store)

	verifier := auth.NewLineVerifier(cfg.LineProfileURL, cfg.MockAuthEnabled)
	handler := httpapi.NewHandler(availabilityService, bookingService, userService, referenceService, logger)
	router := httpapi.NewRouter(cfg, verifier, handler, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Booking API started", zap.String("port", cfg.Port))

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

// noBusySource заглушка источника занятых интервалов
type noBusySource struct{}

func (noBusySource) FetchBusy(ctx context.Context, date time.Time) []model.BusyInterval {
	return nil
}
