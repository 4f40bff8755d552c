package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig — настройки клиента модели.
type OpenAIConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	Temperature  float32
	Timeout      time.Duration
	WhisperModel string
	Language     string
}

// OpenAIClient реализует LLMClient и Transcriber поверх OpenAI-совместимого API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger zerolog.Logger
}

// Compile-time checks
var (
	_ LLMClient   = (*OpenAIClient)(nil)
	_ Transcriber = (*OpenAIClient)(nil)
)

func NewOpenAIClient(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = openai.Whisper1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: logger.With().Str("component", "openai").Logger(),
	}, nil
}

// GenerateText выполняет один chat completion без ретраев.
func (c *OpenAIClient) GenerateText(ctx context.Context, systemPrompt, userInput string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		N:           1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userInput},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	c.logger.Debug().
		Dur("took", time.Since(start)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion done")
	return resp.Choices[0].Message.Content, nil
}

// Transcribe распознает голосовое сообщение. Любой сбой сводится к "не
// распозналось": пользователю предложат прислать текст, процесс не падает.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.WhisperModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Language: c.cfg.Language,
	})
	if err != nil {
		transcriptionsTotal.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("file", filename).Msg("transcription failed")
		return "", false
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		transcriptionsTotal.WithLabelValues("empty").Inc()
		return "", false
	}
	transcriptionsTotal.WithLabelValues("ok").Inc()
	return text, true
}
