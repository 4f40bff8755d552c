package model

import "errors"

var (
	// ErrSessionNotFound — событие требует черновика, а его нет (отменен, опубликован
	// или процесс был перезапущен).
	ErrSessionNotFound = errors.New("draft session not found")

	// ErrMediaLimit — попытка добавить медиа сверх настроенного лимита.
	ErrMediaLimit = errors.New("media limit reached")

	// ErrGeneration — внешняя генерация завершилась ошибкой.
	ErrGeneration = errors.New("post generation failed")

	// ErrEmptyCompletion — модель вернула пустой результат.
	ErrEmptyCompletion = errors.New("model returned empty completion")

	// ErrNoPublishTarget — не настроен канал для публикации.
	ErrNoPublishTarget = errors.New("publish target is not configured")
)
