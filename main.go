package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/marketdesk/support-chat/internal/api"
	"github.com/marketdesk/support-chat/internal/api/handlers"
	"github.com/marketdesk/support-chat/internal/api/ws"
	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/cron"
	"github.com/marketdesk/support-chat/internal/jobs"
	"github.com/marketdesk/support-chat/internal/notify"
	"github.com/marketdesk/support-chat/internal/repositories"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	settings, err := config.Load()
	if err != nil {
		sugar.Fatalw("config load failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := config.InitDB(ctx, settings); err != nil {
		sugar.Fatalw("store init failed", "err", err)
	}
	sugar.Infow("stores connected", "primary_db", settings.PrimaryDBName, "support_db", settings.SupportDBName)

	ws.SetLogger(sugar)
	handlers.InitHandlers(settings)

	sink := notify.NewTelegramSink(settings.TelegramBotToken, sugar)
	monitor := notify.NewMonitor(settings.NotificationURL, settings.StaticToken, sugar)
	prefs := repositories.DefaultNotificationPrefRepository()
	primary := repositories.DefaultPrimaryUserRepository()

	secban := jobs.NewSecbanJob(prefs, sink, monitor, sugar)
	saas := jobs.NewSaasJob(primary, prefs, sink, settings.Roles.Admin, sugar)
	cron.StartCronJobs(secban, saas, sugar)

	if err := api.NewServer(settings.HTTPAddr); err != nil {
		sugar.Fatalw("server exited", "err", err)
	}
}
