package transport

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Callback data кнопок.
const (
	cbRegenerate = "regenerate"
	cbEdit       = "edit"
	cbAddMedia   = "add_media"
	cbMediaDone  = "media_done"
	cbPublish    = "publish"
	cbCancel     = "cancel"
	cbBackMain   = "back_main"
	stylePrefix  = "style_"
)

func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔁 Перегенерировать", cbRegenerate)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Редактировать", cbEdit)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📎 Прикрепить медиа", cbAddMedia)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📤 Опубликовать", cbPublish)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", cbCancel)),
	)
}

func styleKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏁 Классический", stylePrefix+"classic")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("😄 Шуточный", stylePrefix+"funny")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Репортаж", stylePrefix+"report")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("↩️ Назад", cbBackMain)),
	)
}

func mediaKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Готово", cbMediaDone)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", cbCancel)),
	)
}
