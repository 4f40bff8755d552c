package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию бота. Все значения берутся из переменных
// окружения (.env подхватывается в main).
type Config struct {
	// Telegram
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Канал публикации: числовой id или @username. Пустое значение — ошибка
	// на каждой попытке публикации, но не при старте.
	ChannelID string `envconfig:"TELEGRAM_CHANNEL_ID"`
	// Лимит медиа на один черновик
	MaxMediaItems int `envconfig:"MAX_MEDIA_ITEMS" default:"3"`
	// Разрешенные пользователи (id или @username). Пустой список — доступ всем.
	AllowedUsers []string `envconfig:"ALLOWED_USERS"`

	// Генерация
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL"`
	OpenAITemperature float32       `envconfig:"OPENAI_TEMPERATURE" default:"0.9"`
	OpenAITimeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"120s"`

	// Распознавание речи
	WhisperModel   string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	SpeechLanguage string `envconfig:"SPEECH_LANGUAGE" default:"ru"`

	// Дата/время в постах
	Timezone string `envconfig:"TIMEZONE" default:"Europe/Moscow"`

	// Хранилище сессий: при пустом REDIS_ADDR используется память процесса
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Метрики
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9091"`
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
