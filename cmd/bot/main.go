package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lead-assistant/internal/analytics"
	"lead-assistant/internal/api"
	"lead-assistant/internal/config"
	"lead-assistant/internal/dialog"
	"lead-assistant/internal/history"
	"lead-assistant/internal/knowledge"
	"lead-assistant/internal/llm"
	"lead-assistant/internal/logging"
	"lead-assistant/internal/metrics"
	"lead-assistant/internal/notify"
	"lead-assistant/internal/scheduler"
	"lead-assistant/internal/storage"
	"lead-assistant/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	kb, err := knowledge.Load(cfg.KnowledgeDir)
	if err != nil {
		log.Warn("knowledge base loaded partially", zap.String("dir", cfg.KnowledgeDir), zap.Error(err))
	}

	contacts, err := storage.NewContactStore(cfg.ContactsJSONPath, cfg.ContactsCSVPath, log.Named("contacts"))
	if err != nil {
		return fmt.Errorf("init contact store: %w", err)
	}

	var recorder *storage.FileRecorder
	if cfg.LogFilePath != "" {
		recorder, err = storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Warn("interaction log disabled", zap.Error(err))
			recorder = nil
		}
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	m := metrics.New()
	hist := history.NewManager(cfg.HistoryMax)

	operator := notify.NewTelegram(botAPI, cfg.AdminUserID)
	notifiers := notify.Multi{operator}
	if cfg.EmailNotificationsEnabled() {
		gm, err := notify.NewGmail(ctx, cfg.GmailCredentialsPath, cfg.GmailRefreshToken, cfg.NotifyEmailTo)
		if err != nil {
			log.Warn("e-mail notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, gm)
		}
	}

	deps := dialog.Deps{
		Knowledge: kb,
		History:   hist,
		Model:     model,
		Contacts:  contacts,
		Notifier:  notifiers,
		Metrics:   m,
		Logger:    log.Named("dialog"),
	}
	if recorder != nil {
		deps.Recorder = recorder
	}
	orch := dialog.New(deps, dialog.Options{
		ConsultationGate:    cfg.ConsultationGate,
		KnowledgeAsContext:  cfg.KnowledgeAsContext,
		TextContactFallback: cfg.TextContactFallback,
		ContextTurns:        cfg.HistoryContextTurns,
		ModelTimeout:        cfg.ModelTimeout,
		SystemPrompt:        readSystemPrompt(cfg.SystemPromptPath, log),
	})

	var stats telegram.StatsFunc
	if recorder != nil {
		stats = func(now time.Time) (string, error) { return analytics.Summary(recorder, now) }
	}

	bot := telegram.New(botAPI, telegram.Deps{
		Dialog:      orch,
		History:     hist,
		Knowledge:   kb,
		Contacts:    contacts,
		Stats:       stats,
		Failures:    m,
		AdminUserID: cfg.AdminUserID,
		MaxLength:   cfg.MessageMaxLength,
		Logger:      log.Named("telegram"),
	})

	if cfg.DailyReportSpec != "" && recorder != nil && cfg.AdminUserID != 0 {
		sched := scheduler.New(cfg.DailyReportSpec, time.Local, log.Named("scheduler"))
		sched.SetReportFunction(func(ctx context.Context) error {
			summary, err := analytics.Summary(recorder, time.Now())
			if err != nil {
				return err
			}
			return operator.SendText(fmt.Sprintf("%s\n\n👥 Контактов всего: %d", summary, contacts.Count()))
		})
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	if err := operator.SendText(notify.BotStartedText); err != nil {
		log.Warn("failed to notify operator about startup", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Start(ctx) })
	if cfg.HTTPAddr != "" {
		srv := api.NewServer(cfg.HTTPAddr, m.Handler(), contacts, log.Named("http"))
		g.Go(func() error { return srv.Start(ctx) })
	}

	log.Info("bot started", zap.String("provider", string(cfg.LLMProvider)), zap.Int64("operator", cfg.AdminUserID))
	return g.Wait()
}

func readSystemPrompt(path string, log *zap.Logger) string {
	if path == "" {
		return dialog.DefaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("system prompt unreadable, using built-in prompt", zap.String("path", path), zap.Error(err))
		return dialog.DefaultSystemPrompt
	}
	return strings.TrimSpace(string(data))
}
