// Package transport привязывает машину составления поста к Telegram: цикл
// long polling, маршрутизация сообщений и callback-кнопок, рендер ответов.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"post-bot/internal/compose"
	"post-bot/internal/config"
	"post-bot/internal/model"
	"post-bot/internal/service"
)

const (
	msgStart = "🏁 Бот запущен. Отправьте текст или голосовое сообщение — соберу из него пост для канала. /help для справки"
	msgHelp  = "Пришлите текст или голосовое сообщение — я сгенерирую пост. Дальше кнопками можно перегенерировать в другом стиле, отредактировать текст, прикрепить медиа и опубликовать в канал."

	msgGenerating      = "🤖 Генерирую пост…"
	msgStyleGenerating = "🤖 Генерирую пост в выбранном стиле…"
	msgTranscribing    = "🎙 Распознаю голосовое сообщение…"
	msgChooseStyle     = "🎨 Выберите стиль:"
	msgEdited          = "✅ Текст обновлён."
	msgPublished       = "✅ Опубликовано!"
	msgCancelled       = "❌ Операция отменена. Отправьте текст заново."

	msgSessionLost     = "Сессия не найдена. Отправьте текст заново."
	msgNoDraft         = "Пост не найден. Сгенерируйте заново."
	msgNoText          = "Текст отсутствует. Отправьте сообщение заново."
	msgGenerationError = "❌ Не удалось сгенерировать пост. Попробуйте еще раз."
	msgTranscribeFail  = "❌ Не удалось распознать речь. Отправьте текст сообщением."
	msgDownloadFail    = "❌ Не удалось получить аудиофайл."
	msgPublishError    = "Ошибка публикации. Попробуйте еще раз."
	msgNoChannel       = "Не настроен канал публикации (TELEGRAM_CHANNEL_ID)."
	msgUnauthorized    = "⛔ Нет доступа."
	msgUnexpected      = "❌ Что-то пошло не так. Попробуйте еще раз."

	msgPressAttach   = "Чтобы добавить медиа к посту, нажмите кнопку «Прикрепить медиа»."
	msgSendMedia     = "Отправьте фото/видео/аудио."
	msgSendEditProto = "✏️ Текущий текст:\n\n%s\n\nОтправьте отредактированную версию одним сообщением."
)

// Bot держит API Telegram и зависимости ядра.
type Bot struct {
	api     *tgbotapi.BotAPI
	machine *compose.Machine
	trans   service.Transcriber
	cfg     *config.Config
	http    *http.Client
	logger  zerolog.Logger
}

func NewBot(api *tgbotapi.BotAPI, machine *compose.Machine, trans service.Transcriber, cfg *config.Config, logger zerolog.Logger) *Bot {
	return &Bot{
		api:     api,
		machine: machine,
		trans:   trans,
		cfg:     cfg,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With().Str("component", "transport").Logger(),
	}
}

// Run запускает long polling и обрабатывает обновления последовательно, до
// отмены контекста. Платформа сериализует события одного пользователя, поэтому
// дополнительной синхронизации на пользователя не нужно.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info().Str("bot", b.api.Self.UserName).Msg("long polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !authorized(b.cfg.AllowedUsers, msg.From) {
		b.sendText(msg.Chat.ID, msgUnauthorized)
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sendText(chatID, msgStart)
		case "help":
			b.sendText(chatID, msgHelp)
		}
		return
	}

	if item, ok := mediaFromMessage(msg); ok {
		b.handleIncomingMedia(ctx, chatID, userID, msg, item)
		return
	}

	if msg.Text != "" {
		b.handleIncomingText(ctx, chatID, userID, msg.Text)
	}
}

// handleIncomingText направляет текст в машину: в Idle это генерация нового
// черновика, в режиме правки — замена текста поста.
func (b *Bot) handleIncomingText(ctx context.Context, chatID, userID int64, text string) {
	if b.machine.StateOf(userID) == compose.StateIdle {
		b.sendText(chatID, msgGenerating)
	}
	res, err := b.machine.HandleText(ctx, userID, text)
	if err != nil {
		b.reportError(chatID, err)
		return
	}
	switch res.Outcome {
	case compose.TextGenerated:
		b.sendWithKeyboard(chatID, res.Post, mainKeyboard())
	case compose.TextEdited:
		b.sendWithKeyboard(chatID, msgEdited, mainKeyboard())
		b.sendText(chatID, res.Post)
	case compose.TextIgnoredAwaitingMedia:
		b.sendText(chatID, msgSendMedia)
	}
}

// handleIncomingMedia решает судьбу входящего медиа по текущему режиму:
// прикрепление, транскрипция голоса или подсказка нажать кнопку.
func (b *Bot) handleIncomingMedia(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message, item model.MediaItem) {
	if b.machine.StateOf(userID) == compose.StateAwaitingMedia {
		res, err := b.machine.HandleMedia(ctx, userID, item)
		switch {
		case errors.Is(err, model.ErrMediaLimit):
			b.sendWithKeyboard(chatID, fmt.Sprintf("⚠️ Достигнут лимит медиа: %d", res.Max), mediaKeyboard())
		case err != nil:
			b.reportError(chatID, err)
		default:
			b.sendWithKeyboard(chatID,
				fmt.Sprintf("✅ Добавлено: %d/%d. Можете отправить еще или нажать «Готово».", res.Count, res.Max),
				mediaKeyboard())
		}
		return
	}

	if item.Kind == model.MediaVoice || item.Kind == model.MediaAudio {
		b.transcribeAndGenerate(ctx, chatID, userID, msg, item)
		return
	}

	b.sendText(chatID, msgPressAttach)
}

func (b *Bot) transcribeAndGenerate(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message, item model.MediaItem) {
	b.sendText(chatID, msgTranscribing)
	audio, err := b.downloadFile(ctx, item.FileID)
	if err != nil {
		b.logger.Error().Err(err).Str("file_id", item.FileID).Msg("audio download failed")
		b.sendText(chatID, msgDownloadFail)
		return
	}
	text, ok := b.trans.Transcribe(ctx, audio, audioFilename(msg))
	if !ok {
		b.sendText(chatID, msgTranscribeFail)
		return
	}
	b.handleIncomingText(ctx, chatID, userID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !authorized(b.cfg.AllowedUsers, cb.From) {
		b.alert(cb, msgUnauthorized)
		return
	}
	if cb.Message == nil {
		b.answer(cb)
		return
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	switch data := cb.Data; {
	case data == cbRegenerate:
		b.answer(cb)
		b.editWithKeyboard(chatID, msgID, msgChooseStyle, styleKeyboard())

	case len(data) > len(stylePrefix) && data[:len(stylePrefix)] == stylePrefix:
		style := data[len(stylePrefix):]
		post, err := b.regenerate(ctx, chatID, msgID, userID, style)
		switch {
		case errors.Is(err, model.ErrSessionNotFound):
			b.alert(cb, msgSessionLost)
		case err != nil:
			b.answer(cb)
			b.editWithKeyboard(chatID, msgID, msgGenerationError, mainKeyboard())
		default:
			b.answer(cb)
			b.editWithKeyboard(chatID, msgID, post, mainKeyboard())
		}

	case data == cbEdit:
		current, err := b.machine.BeginEdit(ctx, userID)
		if err != nil {
			b.alert(cb, msgSessionLost)
			return
		}
		b.answer(cb)
		b.editText(chatID, msgID, fmt.Sprintf(msgSendEditProto, current))

	case data == cbAddMedia:
		res, err := b.machine.BeginMedia(ctx, userID)
		if err != nil {
			b.alert(cb, msgSessionLost)
			return
		}
		b.answer(cb)
		b.editWithKeyboard(chatID, msgID,
			fmt.Sprintf("📎 Отправьте фото/видео/аудио (до %d файлов, добавлено %d). Нажмите «Готово», когда закончите.", res.Max, res.Count),
			mediaKeyboard())

	case data == cbMediaDone:
		post, err := b.machine.FinishMedia(ctx, userID)
		b.answer(cb)
		if err != nil {
			b.editText(chatID, msgID, msgNoText)
			return
		}
		b.editWithKeyboard(chatID, msgID,
			fmt.Sprintf("%s\n\nПрикреплено медиа: %d/%d", post.PostText, len(post.Media), b.cfg.MaxMediaItems),
			mainKeyboard())

	case data == cbPublish:
		b.publish(ctx, cb, chatID, msgID, userID)

	case data == cbBackMain:
		text, err := b.machine.CurrentPost(ctx, userID)
		b.answer(cb)
		if err != nil {
			b.editText(chatID, msgID, msgNoText)
			return
		}
		b.editWithKeyboard(chatID, msgID, text, mainKeyboard())

	case data == cbCancel:
		if err := b.machine.Cancel(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("cancel failed")
		}
		b.answer(cb)
		b.editText(chatID, msgID, msgCancelled)

	default:
		b.answer(cb)
	}
}

func (b *Bot) regenerate(ctx context.Context, chatID int64, msgID int, userID int64, style string) (string, error) {
	b.editText(chatID, msgID, msgStyleGenerating)
	return b.machine.Regenerate(ctx, userID, style)
}

// publish собирает план доставки и шлет его в канал. При любой ошибке черновик
// сохраняется, публикацию можно повторить.
func (b *Bot) publish(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, msgID int, userID int64) {
	sender, err := NewChannelSender(b.api, b.cfg.ChannelID)
	if err != nil {
		b.alert(cb, msgNoChannel)
		return
	}
	err = b.machine.Publish(ctx, userID, sender)
	service.ObservePublish(err)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		b.alert(cb, msgNoDraft)
	case err != nil:
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("publish failed")
		b.alert(cb, msgPublishError)
	default:
		b.answer(cb)
		b.editText(chatID, msgID, msgPublished)
	}
}

// downloadFile скачивает файл с серверов Telegram для передачи в распознавание.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func mediaFromMessage(msg *tgbotapi.Message) (model.MediaItem, bool) {
	switch {
	case len(msg.Photo) > 0:
		// Telegram присылает несколько размеров, последний — самый крупный.
		return model.MediaItem{Kind: model.MediaPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID}, true
	case msg.Video != nil:
		return model.MediaItem{Kind: model.MediaVideo, FileID: msg.Video.FileID}, true
	case msg.Audio != nil:
		return model.MediaItem{Kind: model.MediaAudio, FileID: msg.Audio.FileID}, true
	case msg.Voice != nil:
		return model.MediaItem{Kind: model.MediaVoice, FileID: msg.Voice.FileID}, true
	}
	return model.MediaItem{}, false
}

func audioFilename(msg *tgbotapi.Message) string {
	if msg.Audio != nil && msg.Audio.FileName != "" {
		return msg.Audio.FileName
	}
	return "voice.ogg"
}

func (b *Bot) reportError(chatID int64, err error) {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		b.sendText(chatID, msgSessionLost)
	case errors.Is(err, model.ErrGeneration):
		b.sendText(chatID, msgGenerationError)
	default:
		b.logger.Error().Err(err).Msg("unexpected error")
		b.sendText(chatID, msgUnexpected)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Msg("send message failed")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send message failed")
	}
}

func (b *Bot) editText(chatID int64, msgID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, msgID, text)); err != nil {
		b.logger.Error().Err(err).Msg("edit message failed")
	}
}

func (b *Bot) editWithKeyboard(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)); err != nil {
		b.logger.Error().Err(err).Msg("edit message failed")
	}
}

func (b *Bot) answer(cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debug().Err(err).Msg("answer callback failed")
	}
}

func (b *Bot) alert(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cb.ID, text)); err != nil {
		b.logger.Debug().Err(err).Msg("answer callback failed")
	}
}
