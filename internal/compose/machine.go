package compose

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"post-bot/internal/delivery"
	"post-bot/internal/model"
	"post-bot/internal/session"
)

// Generator — внешняя генерация текста поста. Реализация в internal/service.
type Generator interface {
	GenerateFromText(ctx context.Context, text string) (string, error)
	GenerateInStyle(ctx context.Context, text, style string) (string, error)
}

// TextOutcome — что произошло с текстовым сообщением.
type TextOutcome int

const (
	// TextGenerated — создан новый черновик из присланного текста.
	TextGenerated TextOutcome = iota
	// TextEdited — текст поста заменен присланным без генерации.
	TextEdited
	// TextIgnoredAwaitingMedia — ждем медиа, текст не обрабатываем.
	TextIgnoredAwaitingMedia
)

// TextResult — результат обработки текстового события.
type TextResult struct {
	Outcome TextOutcome
	Post    string
}

// MediaResult — результат попытки прикрепить медиа.
type MediaResult struct {
	// Attached false при nil-ошибке означает, что медиа пришло вне режима
	// прикрепления и было проигнорировано.
	Attached bool
	Count    int
	Max      int
}

// Machine ведет состояние диалога и черновик каждого пользователя. Все события
// обрабатываются последовательно одним циклом транспорта; внутренний мьютекс
// защищает только карту состояний.
type Machine struct {
	mu       sync.Mutex
	states   map[int64]State
	store    session.Store
	gen      Generator
	maxMedia int
	logger   zerolog.Logger
}

func NewMachine(store session.Store, gen Generator, maxMedia int, logger zerolog.Logger) *Machine {
	return &Machine{
		states:   make(map[int64]State),
		store:    store,
		gen:      gen,
		maxMedia: maxMedia,
		logger:   logger.With().Str("component", "compose").Logger(),
	}
}

// StateOf возвращает текущий режим диалога пользователя.
func (m *Machine) StateOf(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

func (m *Machine) apply(userID int64, ev Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Next(m.states[userID], ev)
	if next == StateIdle {
		delete(m.states, userID)
	} else {
		m.states[userID] = next
	}
	return next
}

// draft загружает черновик; при его отсутствии сбрасывает состояние в Idle,
// чтобы следующий ввод начинался с чистого листа.
func (m *Machine) draft(ctx context.Context, userID int64) (*model.DraftPost, error) {
	post, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			m.apply(userID, EventReset)
		}
		return nil, err
	}
	return post, nil
}

// HandleText обрабатывает входящий текст в зависимости от режима: генерация
// нового черновика, ручная правка или подсказка в режиме медиа.
func (m *Machine) HandleText(ctx context.Context, userID int64, text string) (TextResult, error) {
	switch m.StateOf(userID) {
	case StateAwaitingEdit:
		post, err := m.draft(ctx, userID)
		if err != nil {
			return TextResult{}, err
		}
		post.PostText = text
		if err := m.store.Put(ctx, post); err != nil {
			return TextResult{}, fmt.Errorf("save edited draft: %w", err)
		}
		m.apply(userID, EventText)
		m.logger.Info().Int64("user_id", userID).Str("draft_id", post.ID.String()).Msg("post text edited manually")
		return TextResult{Outcome: TextEdited, Post: text}, nil

	case StateAwaitingMedia:
		return TextResult{Outcome: TextIgnoredAwaitingMedia}, nil

	default:
		generated, err := m.gen.GenerateFromText(ctx, text)
		if err != nil {
			// Состояние и прежний черновик не трогаем: ошибка генерации
			// не должна терять уже набранное.
			return TextResult{}, err
		}
		post := model.NewDraftPost(userID, text, generated)
		if err := m.store.Put(ctx, post); err != nil {
			return TextResult{}, fmt.Errorf("save draft: %w", err)
		}
		m.logger.Info().
			Int64("user_id", userID).
			Str("draft_id", post.ID.String()).
			Str("verbosity", string(model.VerbosityFor(text))).
			Msg("draft generated")
		return TextResult{Outcome: TextGenerated, Post: generated}, nil
	}
}

// HandleMedia прикрепляет медиа, когда пользователь в режиме прикрепления.
// Вне режима событие игнорируется: транспорт подскажет нажать кнопку.
func (m *Machine) HandleMedia(ctx context.Context, userID int64, item model.MediaItem) (MediaResult, error) {
	if m.StateOf(userID) != StateAwaitingMedia {
		return MediaResult{Max: m.maxMedia}, nil
	}
	post, err := m.draft(ctx, userID)
	if err != nil {
		return MediaResult{}, err
	}
	if err := post.AppendMedia(item, m.maxMedia); err != nil {
		return MediaResult{Count: len(post.Media), Max: m.maxMedia}, err
	}
	if err := m.store.Put(ctx, post); err != nil {
		return MediaResult{}, fmt.Errorf("save draft media: %w", err)
	}
	m.logger.Debug().
		Int64("user_id", userID).
		Str("kind", string(item.Kind)).
		Int("count", len(post.Media)).
		Msg("media attached")
	return MediaResult{Attached: true, Count: len(post.Media), Max: m.maxMedia}, nil
}

// BeginEdit переводит диалог в режим правки и возвращает текущий текст поста.
func (m *Machine) BeginEdit(ctx context.Context, userID int64) (string, error) {
	post, err := m.draft(ctx, userID)
	if err != nil {
		return "", err
	}
	m.apply(userID, EventEdit)
	return post.PostText, nil
}

// BeginMedia переводит диалог в режим прикрепления медиа.
func (m *Machine) BeginMedia(ctx context.Context, userID int64) (MediaResult, error) {
	post, err := m.draft(ctx, userID)
	if err != nil {
		return MediaResult{}, err
	}
	m.apply(userID, EventAttach)
	return MediaResult{Count: len(post.Media), Max: m.maxMedia}, nil
}

// FinishMedia завершает режим прикрепления и возвращает черновик для показа.
func (m *Machine) FinishMedia(ctx context.Context, userID int64) (*model.DraftPost, error) {
	m.apply(userID, EventMediaDone)
	return m.draft(ctx, userID)
}

// Regenerate перегенерирует текст поста в выбранном стиле. Источник — всегда
// original_text, поэтому корзина длины не дрейфует от повторных перегенераций.
func (m *Machine) Regenerate(ctx context.Context, userID int64, style string) (string, error) {
	post, err := m.draft(ctx, userID)
	if err != nil {
		return "", err
	}
	generated, err := m.gen.GenerateInStyle(ctx, post.OriginalText, style)
	if err != nil {
		return "", err
	}
	post.PostText = generated
	if err := m.store.Put(ctx, post); err != nil {
		return "", fmt.Errorf("save regenerated draft: %w", err)
	}
	m.logger.Info().Int64("user_id", userID).Str("style", style).Msg("draft regenerated")
	return generated, nil
}

// Publish строит план доставки и исполняет его через переданный Executor.
// Черновик удаляется только после успешной доставки: после транспортной ошибки
// публикацию можно повторить без перегенерации.
func (m *Machine) Publish(ctx context.Context, userID int64, ex delivery.Executor) error {
	post, err := m.draft(ctx, userID)
	if err != nil {
		return err
	}
	plan := delivery.BuildPlan(post, m.maxMedia)
	if err := delivery.Execute(ctx, ex, plan); err != nil {
		return fmt.Errorf("publish draft %s: %w", post.ID, err)
	}
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear published draft: %w", err)
	}
	m.apply(userID, EventPublish)
	m.logger.Info().
		Int64("user_id", userID).
		Str("draft_id", post.ID.String()).
		Int("media", len(post.Media)).
		Msg("draft published")
	return nil
}

// Cancel удаляет черновик и сбрасывает режим. Повторный вызов безопасен.
func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("cancel draft: %w", err)
	}
	m.apply(userID, EventCancel)
	return nil
}

// CurrentPost возвращает текст текущего черновика (для возврата в главное меню).
func (m *Machine) CurrentPost(ctx context.Context, userID int64) (string, error) {
	post, err := m.draft(ctx, userID)
	if err != nil {
		return "", err
	}
	return post.PostText, nil
}
