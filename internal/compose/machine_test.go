package compose_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"post-bot/internal/compose"
	"post-bot/internal/delivery"
	"post-bot/internal/mocks"
	"post-bot/internal/model"
	"post-bot/internal/session"
)

const (
	testUserID   = int64(100500)
	testMaxMedia = 3
)

func newMachine(t *testing.T) (*compose.Machine, *mocks.MockGenerator, *session.MemoryStore) {
	t.Helper()
	gen := mocks.NewMockGenerator(t)
	store := session.NewMemoryStore()
	m := compose.NewMachine(store, gen, testMaxMedia, zerolog.Nop())
	return m, gen, store
}

// seedDraft кладет готовый черновик, минуя генерацию.
func seedDraft(t *testing.T, store *session.MemoryStore, original, post string) *model.DraftPost {
	t.Helper()
	draft := model.NewDraftPost(testUserID, original, post)
	assert.NoError(t, store.Put(context.Background(), draft))
	return draft
}

func TestNextTransitionTable(t *testing.T) {
	cases := []struct {
		state compose.State
		event compose.Event
		want  compose.State
	}{
		{compose.StateIdle, compose.EventText, compose.StateIdle},
		{compose.StateIdle, compose.EventEdit, compose.StateAwaitingEdit},
		{compose.StateIdle, compose.EventAttach, compose.StateAwaitingMedia},
		{compose.StateIdle, compose.EventMedia, compose.StateIdle},
		{compose.StateAwaitingEdit, compose.EventText, compose.StateIdle},
		{compose.StateAwaitingEdit, compose.EventEdit, compose.StateAwaitingEdit},
		{compose.StateAwaitingMedia, compose.EventMedia, compose.StateAwaitingMedia},
		{compose.StateAwaitingMedia, compose.EventMediaDone, compose.StateIdle},
		{compose.StateAwaitingMedia, compose.EventAttach, compose.StateAwaitingMedia},
		{compose.StateAwaitingEdit, compose.EventCancel, compose.StateIdle},
		{compose.StateAwaitingMedia, compose.EventPublish, compose.StateIdle},
		{compose.StateAwaitingMedia, compose.EventReset, compose.StateIdle},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v+%v", tc.state, tc.event), func(t *testing.T) {
			assert.Equal(t, tc.want, compose.Next(tc.state, tc.event))
		})
	}
}

func TestHandleText_GeneratesDraft(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)

	gen.On("GenerateFromText", mock.Anything, "гонка в воскресенье").
		Return("Пост про гонку", nil).Once()

	res, err := m.HandleText(ctx, testUserID, "гонка в воскресенье")
	assert.NoError(t, err)
	assert.Equal(t, compose.TextGenerated, res.Outcome)
	assert.Equal(t, "Пост про гонку", res.Post)

	draft, err := store.Get(ctx, testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "гонка в воскресенье", draft.OriginalText)
	assert.Equal(t, "Пост про гонку", draft.PostText)
	assert.Empty(t, draft.Media)
	assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	gen.AssertExpectations(t)
}

func TestHandleText_GenerationFailureKeepsPriorDraft(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)
	prior := seedDraft(t, store, "старый текст", "старый пост")

	gen.On("GenerateFromText", mock.Anything, "новый текст").
		Return("", model.ErrGeneration).Once()

	_, err := m.HandleText(ctx, testUserID, "новый текст")
	assert.ErrorIs(t, err, model.ErrGeneration)

	// Прежний черновик не тронут, состояние не изменилось.
	draft, getErr := store.Get(ctx, testUserID)
	assert.NoError(t, getErr)
	assert.Equal(t, prior.PostText, draft.PostText)
	assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
}

func TestHandleText_NewSourceReplacesDraftWholesale(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)
	old := seedDraft(t, store, "старый", "старый пост")
	old.Media = []model.MediaItem{{Kind: model.MediaPhoto, FileID: "p"}}

	gen.On("GenerateFromText", mock.Anything, "новый").Return("новый пост", nil).Once()

	_, err := m.HandleText(ctx, testUserID, "новый")
	assert.NoError(t, err)

	draft, _ := store.Get(ctx, testUserID)
	assert.Equal(t, "новый", draft.OriginalText)
	assert.Empty(t, draft.Media, "медиа прежнего черновика не переживают перегенерацию")
	assert.NotEqual(t, old.ID, draft.ID)
}

func TestEditFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("text after edit replaces post verbatim without generation", func(t *testing.T) {
		m, gen, store := newMachine(t)
		seedDraft(t, store, "src", "сгенерированный")

		current, err := m.BeginEdit(ctx, testUserID)
		assert.NoError(t, err)
		assert.Equal(t, "сгенерированный", current)
		assert.Equal(t, compose.StateAwaitingEdit, m.StateOf(testUserID))

		res, err := m.HandleText(ctx, testUserID, "мой ручной текст")
		assert.NoError(t, err)
		assert.Equal(t, compose.TextEdited, res.Outcome)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))

		draft, _ := store.Get(ctx, testUserID)
		assert.Equal(t, "мой ручной текст", draft.PostText)
		assert.Equal(t, "src", draft.OriginalText)
		gen.AssertNotCalled(t, "GenerateFromText", mock.Anything, mock.Anything)
	})

	t.Run("edit without draft fails gracefully", func(t *testing.T) {
		m, _, _ := newMachine(t)
		_, err := m.BeginEdit(ctx, testUserID)
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	})

	t.Run("draft lost while awaiting edit resets to idle", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")
		_, err := m.BeginEdit(ctx, testUserID)
		assert.NoError(t, err)

		// Черновик исчез (например, процесс хранилища перезапущен).
		assert.NoError(t, store.Delete(ctx, testUserID))

		_, err = m.HandleText(ctx, testUserID, "правка")
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	})
}

func TestMediaFlow(t *testing.T) {
	ctx := context.Background()
	item := func(kind model.MediaKind, id string) model.MediaItem {
		return model.MediaItem{Kind: kind, FileID: id}
	}

	t.Run("appends in order up to the limit then warns", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")

		_, err := m.BeginMedia(ctx, testUserID)
		assert.NoError(t, err)
		assert.Equal(t, compose.StateAwaitingMedia, m.StateOf(testUserID))

		for i := 1; i <= testMaxMedia; i++ {
			res, err := m.HandleMedia(ctx, testUserID, item(model.MediaPhoto, fmt.Sprintf("p%d", i)))
			assert.NoError(t, err)
			assert.True(t, res.Attached)
			assert.Equal(t, i, res.Count)
		}

		res, err := m.HandleMedia(ctx, testUserID, item(model.MediaVideo, "overflow"))
		assert.ErrorIs(t, err, model.ErrMediaLimit)
		assert.Equal(t, testMaxMedia, res.Count)

		draft, _ := store.Get(ctx, testUserID)
		assert.Equal(t, []model.MediaItem{
			item(model.MediaPhoto, "p1"),
			item(model.MediaPhoto, "p2"),
			item(model.MediaPhoto, "p3"),
		}, draft.Media)
		// Переполнение не выбивает из режима прикрепления.
		assert.Equal(t, compose.StateAwaitingMedia, m.StateOf(testUserID))
	})

	t.Run("media outside attach mode is ignored", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")

		res, err := m.HandleMedia(ctx, testUserID, item(model.MediaPhoto, "p1"))
		assert.NoError(t, err)
		assert.False(t, res.Attached)

		draft, _ := store.Get(ctx, testUserID)
		assert.Empty(t, draft.Media)
	})

	t.Run("done returns to idle", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")
		_, err := m.BeginMedia(ctx, testUserID)
		assert.NoError(t, err)

		post, err := m.FinishMedia(ctx, testUserID)
		assert.NoError(t, err)
		assert.Equal(t, "пост", post.PostText)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	})

	t.Run("attach without draft fails gracefully", func(t *testing.T) {
		m, _, _ := newMachine(t)
		_, err := m.BeginMedia(ctx, testUserID)
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	})
}

func TestRegenerate_UsesOriginalSource(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)
	seedDraft(t, store, "исходное сообщение", "первый вариант")

	// Ручная правка не должна влиять на источник перегенерации.
	_, err := m.BeginEdit(ctx, testUserID)
	assert.NoError(t, err)
	_, err = m.HandleText(ctx, testUserID, "совсем другой текст")
	assert.NoError(t, err)

	gen.On("GenerateInStyle", mock.Anything, "исходное сообщение", "funny").
		Return("шуточный вариант", nil).Once()

	post, err := m.Regenerate(ctx, testUserID, "funny")
	assert.NoError(t, err)
	assert.Equal(t, "шуточный вариант", post)

	draft, _ := store.Get(ctx, testUserID)
	assert.Equal(t, "шуточный вариант", draft.PostText)
	assert.Equal(t, "исходное сообщение", draft.OriginalText)
	gen.AssertExpectations(t)
}

func TestRegenerate_FailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)
	seedDraft(t, store, "src", "пост")

	gen.On("GenerateInStyle", mock.Anything, "src", "report").
		Return("", model.ErrGeneration).Once()

	_, err := m.Regenerate(ctx, testUserID, "report")
	assert.ErrorIs(t, err, model.ErrGeneration)

	draft, _ := store.Get(ctx, testUserID)
	assert.Equal(t, "пост", draft.PostText)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears the draft", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")

		ex := mocks.NewMockExecutor(t)
		ex.On("SendText", mock.Anything, "пост").Return(nil).Once()

		assert.NoError(t, m.Publish(ctx, testUserID, ex))

		_, err := store.Get(ctx, testUserID)
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
		assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
		ex.AssertExpectations(t)
	})

	t.Run("transport error keeps the draft for a retry", func(t *testing.T) {
		m, _, store := newMachine(t)
		seedDraft(t, store, "src", "пост")

		ex := mocks.NewMockExecutor(t)
		sendErr := errors.New("telegram: bad gateway")
		ex.On("SendText", mock.Anything, "пост").Return(sendErr).Once()

		err := m.Publish(ctx, testUserID, ex)
		assert.ErrorIs(t, err, sendErr)

		draft, getErr := store.Get(ctx, testUserID)
		assert.NoError(t, getErr)
		assert.Equal(t, "пост", draft.PostText)

		// Повторная публикация после восстановления транспорта проходит.
		ex2 := mocks.NewMockExecutor(t)
		ex2.On("SendText", mock.Anything, "пост").Return(nil).Once()
		assert.NoError(t, m.Publish(ctx, testUserID, ex2))
		ex2.AssertExpectations(t)
	})

	t.Run("publish with media builds a consolidated plan", func(t *testing.T) {
		m, _, store := newMachine(t)
		draft := seedDraft(t, store, "src", "пост")
		draft.Media = []model.MediaItem{
			{Kind: model.MediaPhoto, FileID: "p1"},
			{Kind: model.MediaPhoto, FileID: "p2"},
			{Kind: model.MediaVoice, FileID: "v1"},
		}

		ex := mocks.NewMockExecutor(t)
		ex.On("SendAlbum", mock.Anything, delivery.SendAlbum{Items: []delivery.AlbumItem{
			{Item: model.MediaItem{Kind: model.MediaPhoto, FileID: "p1"}, Caption: "пост"},
			{Item: model.MediaItem{Kind: model.MediaPhoto, FileID: "p2"}, Caption: ""},
		}}).Return(nil).Once()
		ex.On("SendVoice", mock.Anything, "v1").Return(nil).Once()

		assert.NoError(t, m.Publish(ctx, testUserID, ex))
		ex.AssertExpectations(t)
	})

	t.Run("publish without draft fails gracefully", func(t *testing.T) {
		m, _, _ := newMachine(t)
		err := m.Publish(ctx, testUserID, mocks.NewMockExecutor(t))
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	m, _, store := newMachine(t)
	seedDraft(t, store, "src", "пост")
	_, err := m.BeginMedia(ctx, testUserID)
	assert.NoError(t, err)

	assert.NoError(t, m.Cancel(ctx, testUserID))
	assert.Equal(t, compose.StateIdle, m.StateOf(testUserID))
	_, err = store.Get(ctx, testUserID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	// Повторная отмена безопасна.
	assert.NoError(t, m.Cancel(ctx, testUserID))
}

func TestHandleText_IgnoredWhileAwaitingMedia(t *testing.T) {
	ctx := context.Background()
	m, gen, store := newMachine(t)
	seedDraft(t, store, "src", "пост")
	_, err := m.BeginMedia(ctx, testUserID)
	assert.NoError(t, err)

	res, err := m.HandleText(ctx, testUserID, "случайный текст")
	assert.NoError(t, err)
	assert.Equal(t, compose.TextIgnoredAwaitingMedia, res.Outcome)
	assert.Equal(t, compose.StateAwaitingMedia, m.StateOf(testUserID))
	gen.AssertNotCalled(t, "GenerateFromText", mock.Anything, mock.Anything)
}
