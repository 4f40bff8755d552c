package model

import (
	"time"

	"github.com/google/uuid"
)

// MediaKind определяет тип прикрепленного медиа.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaVoice MediaKind = "voice"
)

// IsVisual сообщает, может ли медиа этого типа входить в альбом.
func (k MediaKind) IsVisual() bool {
	return k == MediaPhoto || k == MediaVideo
}

// MediaItem — одно прикрепленное медиа: тип + идентификатор файла на стороне платформы.
type MediaItem struct {
	Kind   MediaKind `json:"kind"`
	FileID string    `json:"file_id"`
}

// DraftPost — черновик поста одного пользователя. Живет в Session Store от первой
// успешной генерации до публикации или отмены.
type DraftPost struct {
	ID           uuid.UUID   `json:"id"`
	UserID       int64       `json:"user_id"`
	OriginalText string      `json:"original_text"`
	PostText     string      `json:"post_text"`
	Media        []MediaItem `json:"media"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewDraftPost создает черновик после успешной генерации. Список медиа всегда пустой:
// повторная генерация с нового исходного текста полностью заменяет прежний черновик.
func NewDraftPost(userID int64, originalText, postText string) *DraftPost {
	return &DraftPost{
		ID:           uuid.New(),
		UserID:       userID,
		OriginalText: originalText,
		PostText:     postText,
		CreatedAt:    time.Now(),
	}
}

// AppendMedia добавляет медиа в конец списка. При достижении лимита возвращает
// ErrMediaLimit, список не меняется.
func (p *DraftPost) AppendMedia(item MediaItem, max int) error {
	if len(p.Media) >= max {
		return ErrMediaLimit
	}
	p.Media = append(p.Media, item)
	return nil
}

// Verbosity — корзина длины, по которой подбирается объем генерации.
type Verbosity string

const (
	VerbosityShort  Verbosity = "short"
	VerbosityMedium Verbosity = "medium"
	VerbosityLong   Verbosity = "long"
)

const (
	shortLimit  = 160
	mediumLimit = 600
)

// VerbosityFor вычисляет корзину по длине исходного текста. Корзина считается от
// original_text, а не от сгенерированного поста, чтобы повторные перегенерации
// не "сползали" к более короткому тексту.
func VerbosityFor(text string) Verbosity {
	switch n := len([]rune(text)); {
	case n < shortLimit:
		return VerbosityShort
	case n < mediumLimit:
		return VerbosityMedium
	default:
		return VerbosityLong
	}
}
