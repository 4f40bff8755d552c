package transport

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// authorized проверяет пользователя по allow-list из id и @username.
// Пустой список разрешает всех — осознанный дефолт для разработки.
func authorized(allowed []string, user *tgbotapi.User) bool {
	if len(allowed) == 0 {
		return true
	}
	if user == nil {
		return false
	}
	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if id, err := strconv.ParseInt(entry, 10, 64); err == nil {
			if id == user.ID {
				return true
			}
			continue
		}
		if user.UserName != "" && strings.EqualFold(strings.TrimPrefix(entry, "@"), user.UserName) {
			return true
		}
	}
	return false
}
