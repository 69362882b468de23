// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/application"
	"receipt-desk-bot/internal/config"
	"receipt-desk-bot/internal/domain/ports/adapter"
	"receipt-desk-bot/internal/domain/ports/repository"
	"receipt-desk-bot/internal/infra/adapters/ocr"
	tele "receipt-desk-bot/internal/infra/adapters/telegram"
	"receipt-desk-bot/internal/infra/api"
	"receipt-desk-bot/internal/infra/catalog"
	"receipt-desk-bot/internal/infra/i18n"
	"receipt-desk-bot/internal/infra/imaging"
	"receipt-desk-bot/internal/infra/logging"
	"receipt-desk-bot/internal/infra/memory"
	"receipt-desk-bot/internal/infra/metrics"
	red "receipt-desk-bot/internal/infra/redis"
	"receipt-desk-bot/internal/infra/sched"
	"receipt-desk-bot/internal/infra/worker"
	"receipt-desk-bot/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type stores struct {
	sessions  repository.SessionRepository
	referrals repository.ReferralRepository
	receipts  repository.ReceiptDedupRepository
	locker    application.UserLocker // nil keeps the in-process lock
	ready     api.ReadyCheck
	close     func()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Config & logging ----
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Stores ----
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("store")
	}
	defer st.close()
	logger.Info().Str("backend", cfg.Store.Backend).Msg("store ready")

	// ---- Catalog & translations ----
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog")
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	logger.Info().Int("products", cat.Len()).Str("lang", tr.Lang()).Msg("catalog loaded")

	// ---- Telegram (noop in dev without a token) ----
	var (
		messenger adapter.Messenger
		fetcher   adapter.FileFetcher
		notifier  adapter.Notifier
		bot       *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token == "" && cfg.Runtime.Dev {
		noop := tele.NewNoopBotAdapter(logger)
		messenger, fetcher, notifier = noop, noop, noop
		logger.Warn().Msg("no bot token: using noop telegram adapter")
	} else {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, cfg.Receipt.MaxDownloadBytes, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		messenger, fetcher, notifier = bot, bot, bot
	}
	botUsername := cfg.Bot.Username
	if botUsername == "" && bot != nil {
		botUsername = bot.Username()
	}

	// ---- OCR ----
	extractor, err := ocr.New(ctx, cfg.OCR, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ocr")
	}
	extractor = ocr.NewLimited(extractor, cfg.Receipt.MaxConcurrent, cfg.Receipt.ExtractionTimeout)
	logger.Info().Str("provider", extractor.Name()).Msg("ocr ready")

	// ---- Use cases ----
	referralUC := usecase.NewReferralUseCase(st.referrals, botUsername, cfg.Referral.Tiers, logger)
	receiptUC := usecase.NewReceiptUseCase(
		st.receipts,
		fetcher,
		imaging.Normalize,
		extractor,
		usecase.NewKeywordValidator(cfg.Receipt.ExtraKeywords...),
		messenger,
		tr,
		usecase.ReceiptOptions{
			ModerationChatID:  cfg.Receipt.ModerationChatID,
			ExtractionTimeout: cfg.Receipt.ExtractionTimeout,
			MaxDownloadBytes:  cfg.Receipt.MaxDownloadBytes,
			DevMode:           cfg.Runtime.Dev,
		},
		logger,
	).WithNotifier(notifier)
	labels := usecase.NewMenuLabels(tr, cat)
	dialogUC := usecase.NewDialogUseCase(cat, labels, tr, referralUC, receiptUC, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(dialogUC, labels, st.sessions, st.referrals, st.receipts, messenger, tr, logger)
	if st.locker != nil {
		facade.WithUserLocker(st.locker)
	}

	// ---- Update workers & polling ----
	pool := worker.NewPool(cfg.Bot.Workers, cfg.Bot.Queue, logger)
	pool.Start(ctx)
	if bot != nil {
		bot.Attach(facade, pool)
		bot.WithBusyText(tr.T("busy"))
		go func() {
			if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Admin HTTP ----
	var admin *api.Server
	if cfg.Admin.Port > 0 {
		admin = api.NewServer(facade, nil, logger)
		admin.AddReadyCheck("store", st.ready)
		go func() {
			if err := admin.Start(cfg.Admin.Port); err != nil {
				logger.Error().Err(err).Msg("admin http server error")
			}
		}()
	}

	// ---- Store gauges (every minute) ----
	gauges := sched.NewStoreGaugeWorker(time.Minute, facade, logger)
	go func() { _ = gauges.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	if bot != nil {
		bot.StopPolling()
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("admin shutdown")
		}
	}
	pool.Stop()
	cancel()
	logger.Info().Msg("bye")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Backend != "redis" {
		return &stores{
			sessions:  memory.NewSessionStore(),
			referrals: memory.NewReferralLedger(),
			receipts:  memory.NewReceiptSet(),
			ready:     func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}
	client, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	return &stores{
		sessions:  red.NewSessionRepo(client),
		referrals: red.NewReferralRepo(client),
		receipts:  red.NewReceiptDedupRepo(client),
		locker:    red.NewUserLocker(client, cfg.Redis.LockTTL),
		ready:     client.Ping,
		close:     func() { _ = client.Close() },
	}, nil
}
