package session

import (
	"context"

	"post-bot/internal/model"
)

// Store хранит черновики постов по идентификатору пользователя. У пользователя
// не бывает больше одного живого черновика.
type Store interface {
	// Get возвращает черновик пользователя или model.ErrSessionNotFound.
	Get(ctx context.Context, userID int64) (*model.DraftPost, error)
	// Put сохраняет черновик, перезаписывая прежний.
	Put(ctx context.Context, post *model.DraftPost) error
	// Delete удаляет черновик. Идемпотентен: отсутствие записи не ошибка.
	Delete(ctx context.Context, userID int64) error
}
