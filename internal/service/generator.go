// Package service содержит оркестратор генерации: подбор параметров (корзина
// длины, стиль) и вызов внешней модели. Состояния и ретраев здесь нет, ошибки
// уходят вызывающему как есть.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"post-bot/internal/model"
	"post-bot/internal/timeparse"
)

// Style — закрытый набор стилей перегенерации.
type Style string

const (
	StyleClassic Style = "classic"
	StyleFunny   Style = "funny"
	StyleReport  Style = "report"
)

var styleDescriptions = map[Style]string{
	StyleClassic: "классический спортивный стиль",
	StyleFunny:   "шуточный, но уместный, без сарказма",
	StyleReport:  "сдержанный репортажный стиль",
}

// normalizeStyle сводит произвольный тег к известному стилю; незнакомые теги
// откатываются к классическому.
func normalizeStyle(tag string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(tag)))
	if _, ok := styleDescriptions[s]; ok {
		return s
	}
	return StyleClassic
}

var verbosityHints = map[model.Verbosity]string{
	model.VerbosityShort:  "2–4 предложения",
	model.VerbosityMedium: "4–6 предложений",
	model.VerbosityLong:   "6–10 предложений",
}

// LLMClient абстрагирует клиента модели, чтобы его можно было подменить в тестах.
type LLMClient interface {
	GenerateText(ctx context.Context, systemPrompt, userInput string) (string, error)
}

// Transcriber распознает речь. Отсутствие результата — не ошибка, а штатный
// исход "не распозналось": вызывающий показывает его пользователю.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, bool)
}

// Orchestrator выбирает параметры генерации и собирает промпты.
type Orchestrator struct {
	llm    LLMClient
	dates  *timeparse.Annotator
	logger zerolog.Logger
}

func NewOrchestrator(llm LLMClient, dates *timeparse.Annotator, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		llm:    llm,
		dates:  dates,
		logger: logger.With().Str("component", "generator").Logger(),
	}
}

// GenerateFromText генерирует пост из произвольного текста пользователя.
// Корзина длины выводится из длины исходного текста.
func (o *Orchestrator) GenerateFromText(ctx context.Context, text string) (string, error) {
	verbosity := model.VerbosityFor(text)
	system := fmt.Sprintf(
		"Ты — менеджер симрейсинг-команды и пишешь живые посты для канала команды. "+
			"Пиши простым языком, %s, без канцелярита и пафоса, 0–2 эмодзи. "+
			"Фокус: команда, трасса, формат/инфо из сообщения. Не придумывай факты.",
		verbosityHints[verbosity],
	)
	user := fmt.Sprintf("Создай пост по информации:\n\n%s", o.annotate(text))
	return o.complete(ctx, "from_text", system, user)
}

// GenerateInStyle перегенерирует пост в выбранном стиле. Текст и корзина длины
// берутся от исходного сообщения, а не от прежнего сгенерированного поста.
func (o *Orchestrator) GenerateInStyle(ctx context.Context, text, styleTag string) (string, error) {
	style := normalizeStyle(styleTag)
	verbosity := model.VerbosityFor(text)
	system := fmt.Sprintf(
		"Ты — менеджер симрейсинг-команды. Стиль: %s. "+
			"Пиши по-человечески, %s, без пафоса.",
		styleDescriptions[style], verbosityHints[verbosity],
	)
	user := fmt.Sprintf("Информация для поста:\n\n%s", o.annotate(text))
	return o.complete(ctx, string(style), system, user)
}

func (o *Orchestrator) complete(ctx context.Context, mode, system, user string) (string, error) {
	out, err := o.llm.GenerateText(ctx, system, user)
	if err != nil {
		generationsTotal.WithLabelValues(mode, "error").Inc()
		o.logger.Error().Err(err).Str("mode", mode).Msg("generation failed")
		return "", fmt.Errorf("%w: %v", model.ErrGeneration, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		generationsTotal.WithLabelValues(mode, "empty").Inc()
		return "", fmt.Errorf("%w: %w", model.ErrGeneration, model.ErrEmptyCompletion)
	}
	generationsTotal.WithLabelValues(mode, "ok").Inc()
	return out, nil
}

// annotate добавляет к тексту строку с распознанной датой события. Дата чисто
// справочная: она попадает в промпт, но ничего не планирует.
func (o *Orchestrator) annotate(text string) string {
	if o.dates == nil {
		return text
	}
	return o.dates.Annotate(text)
}
