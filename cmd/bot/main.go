package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stars-bot/internal/bot"
	"stars-bot/internal/config"
	"stars-bot/internal/database"
	"stars-bot/internal/ledger"
	"stars-bot/internal/storage/postgres"
	"stars-bot/internal/worker"
)

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogger()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("Could not get database handle")
	}
	defer sqlDB.Close()

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to redis")
	}
	defer rdb.Close()

	instance, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		log.WithError(err).Fatal("Could not create telegram bot")
	}

	settings := ledger.Settings{
		FarmCooldown:  cfg.FarmCooldown,
		FarmReward:    cfg.FarmReward,
		BonusCooldown: cfg.BonusCooldown,
		BonusReward:   cfg.BonusReward,
		ReferralBonus: cfg.ReferralBonus,
	}

	store := postgres.NewStore(db)
	notifier := bot.NewNotifier(instance)
	svc := ledger.NewService(store, notifier, settings)
	b := bot.NewBot(instance, svc)
	reminder := worker.NewReminder(store, rdb, notifier, settings, cfg.ReminderInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Start(gctx) })
	g.Go(func() error { return reminder.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Service stopped with error")
	}

	svc.Wait()
	log.Info("Service stopped")
}
