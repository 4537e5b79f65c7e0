package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"class_timer_bot/internal/app"
	"class_timer_bot/internal/infra/config"
	idb "class_timer_bot/internal/infra/database"
	"class_timer_bot/internal/infra/logger"
	"class_timer_bot/internal/infra/scheduler"
	"class_timer_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	tt, err := config.LoadTimetable(cfg.TimetableFile)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not load timetable")
	}
	mainLogger.WithFields(logrus.Fields{
		"periods": len(tt.Periods),
		"entries": len(tt.Entries),
		"source":  cfg.TimetableFile,
	}).Info("Timetable loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare database schema")
	}
	mainLogger.Info("Database connection established")

	subscriberRepo := idb.NewPostgresSubscriberRepository(db)

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	tgClient := telegram.NewBreakerClient(telegram.NewTelebotAdapter(bot), 30*time.Second, logger.Component("telegram"))

	broadcaster := app.NewBroadcastService(subscriberRepo, tgClient, logger.Component("broadcast"), cfg.NotifyQueueSize)
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		broadcaster.Run(ctx)
	}()

	clock := app.SystemClock{}
	board := app.NewBoard(tt.Periods, clock, broadcaster, cfg.TickInterval, logger.Component("board"))
	if err := board.Mount(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not mount period timers")
	}

	schedules := app.NewScheduleService(tt.Entries, clock)
	subscriptions := app.NewSubscriptionService(subscriberRepo)

	timetableScheduler := scheduler.NewTimetableScheduler(
		board,
		schedules,
		broadcaster,
		logger.Component("scheduler"),
		cfg.CronSpecDayStart,
		cfg.CronSpecDigest,
	)
	if err := timetableScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start timetable scheduler")
	}

	telegram.RegisterBotCommands(ctx, bot, subscriptions, logger.Component("commands"))
	telegram.RegisterViewHandlers(bot, board, schedules, logger.Component("views"))

	mainLogger.Info("Application setup complete, starting bot")
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range quit {
		if sig != syscall.SIGHUP {
			break
		}
		reloadTimetable(ctx, board, schedules, cfg.TimetableFile, mainLogger)
	}

	mainLogger.Info("Shutting down application...")
	timetableScheduler.Stop()
	board.Unmount()
	bot.Stop()
	cancel()
	workers.Wait()
	mainLogger.Info("Application shut down gracefully")
}

// reloadTimetable re-reads the timetable and swaps the board's periods and
// the schedule entries. A bad file is logged and the running timetable kept.
func reloadTimetable(ctx context.Context, board *app.Board, schedules *app.ScheduleService, path string, log *logrus.Entry) {
	tt, err := config.LoadTimetable(path)
	if err != nil {
		log.WithError(err).Error("Timetable reload failed, keeping current periods")
		return
	}
	if err := board.Reload(ctx, tt.Periods); err != nil {
		log.WithError(err).Error("Could not apply reloaded periods")
		return
	}
	schedules.SetEntries(tt.Entries)
	log.WithFields(logrus.Fields{
		"periods": len(tt.Periods),
		"entries": len(tt.Entries),
	}).Info("Timetable reloaded")
}
