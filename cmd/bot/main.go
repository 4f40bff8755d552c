package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"post-bot/internal/compose"
	"post-bot/internal/config"
	"post-bot/internal/service"
	"post-bot/internal/session"
	"post-bot/internal/timeparse"
	"post-bot/internal/transport"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		// В production .env может не использоваться
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	initLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Хранилище сессий: память процесса или внешний кеш
	store, err := initStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init session store")
	}

	dates, err := timeparse.New(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init date parser")
	}

	aiClient, err := service.NewOpenAIClient(service.OpenAIConfig{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Temperature:  cfg.OpenAITemperature,
		Timeout:      cfg.OpenAITimeout,
		WhisperModel: cfg.WhisperModel,
		Language:     cfg.SpeechLanguage,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init openai client")
	}

	orchestrator := service.NewOrchestrator(aiClient, dates, log.Logger)
	machine := compose.NewMachine(store, orchestrator, cfg.MaxMediaItems, log.Logger)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telegram api")
	}
	log.Info().Str("bot", api.Self.UserName).Msg("authorized on telegram")

	bot := transport.NewBot(api, machine, aiClient, cfg, log.Logger)

	go startMetricsServer(cfg.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msg("shutdown complete")
}

// initLogger настраивает глобальный логгер
func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// В режиме разработки используем более читаемый вывод
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	logLevel := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		logLevel = lvl
	}
	zerolog.SetGlobalLevel(logLevel)
}

// initStore выбирает хранилище сессий. Черновики по умолчанию живут в памяти
// процесса; при заданном REDIS_ADDR переживают рестарт во внешнем кеше.
func initStore(cfg *config.Config) (session.Store, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("using in-memory session store")
		return session.NewMemoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
	return session.NewRedisStore(client, log.Logger), nil
}

// startMetricsServer поднимает HTTP-эндпоинт метрик Prometheus.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(service.Registry(), promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
