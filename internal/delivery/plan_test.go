package delivery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"post-bot/internal/delivery"
	"post-bot/internal/mocks"
	"post-bot/internal/model"
)

const maxItems = 3

func draftWith(body string, items ...model.MediaItem) *model.DraftPost {
	post := model.NewDraftPost(1, "src", body)
	post.Media = items
	return post
}

func TestBuildPlan(t *testing.T) {
	photo := func(id string) model.MediaItem { return model.MediaItem{Kind: model.MediaPhoto, FileID: id} }
	video := func(id string) model.MediaItem { return model.MediaItem{Kind: model.MediaVideo, FileID: id} }
	audio := func(id string) model.MediaItem { return model.MediaItem{Kind: model.MediaAudio, FileID: id} }
	voice := func(id string) model.MediaItem { return model.MediaItem{Kind: model.MediaVoice, FileID: id} }

	t.Run("no media sends just the text", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X"), maxItems)
		assert.Equal(t, delivery.Plan{delivery.SendText{Body: "X"}}, plan)
	})

	t.Run("single photo is sent with caption", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", photo("A")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendSingle{Item: photo("A"), Caption: "X"},
		}, plan)
	})

	t.Run("single video is sent with caption", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", video("V")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendSingle{Item: video("V"), Caption: "X"},
		}, plan)
	})

	t.Run("album caption goes only to the first item", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", photo("A"), photo("B")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendAlbum{Items: []delivery.AlbumItem{
				{Item: photo("A"), Caption: "X"},
				{Item: photo("B"), Caption: ""},
			}},
		}, plan)
	})

	t.Run("audio never enters the album even as the only companion", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", photo("A"), audio("C")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendAlbum{Items: []delivery.AlbumItem{{Item: photo("A"), Caption: "X"}}},
			delivery.SendAudio{FileID: "C"},
		}, plan)
	})

	t.Run("kinds are grouped, insertion order kept within each kind", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", voice("V1"), photo("P1"), audio("A1")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendAlbum{Items: []delivery.AlbumItem{{Item: photo("P1"), Caption: "X"}}},
			delivery.SendAudio{FileID: "A1"},
			delivery.SendVoice{FileID: "V1"},
		}, plan)
	})

	t.Run("audio only keeps text", func(t *testing.T) {
		// Черновик без фото/видео: текст поста уходит отдельным сообщением,
		// а не пропадает.
		plan := delivery.BuildPlan(draftWith("X", audio("A1"), voice("V1")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendText{Body: "X"},
			delivery.SendAudio{FileID: "A1"},
			delivery.SendVoice{FileID: "V1"},
		}, plan)
	})

	t.Run("list over the limit is truncated at the publish read", func(t *testing.T) {
		plan := delivery.BuildPlan(draftWith("X", photo("A"), photo("B"), photo("C"), photo("D")), maxItems)
		assert.Equal(t, delivery.Plan{
			delivery.SendAlbum{Items: []delivery.AlbumItem{
				{Item: photo("A"), Caption: "X"},
				{Item: photo("B"), Caption: ""},
				{Item: photo("C"), Caption: ""},
			}},
		}, plan)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		post := draftWith("X", photo("A"), video("B"), audio("C"))
		first := delivery.BuildPlan(post, maxItems)
		second := delivery.BuildPlan(post, maxItems)
		assert.Equal(t, first, second)
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("runs actions in plan order", func(t *testing.T) {
		ex := mocks.NewMockExecutor(t)
		var order []string
		ex.On("SendAlbum", mock.Anything, mock.Anything).Return(nil).Once().Run(func(mock.Arguments) {
			order = append(order, "album")
		})
		ex.On("SendAudio", mock.Anything, "A1").Return(nil).Once().Run(func(mock.Arguments) {
			order = append(order, "audio")
		})

		plan := delivery.Plan{
			delivery.SendAlbum{Items: []delivery.AlbumItem{{Item: model.MediaItem{Kind: model.MediaPhoto, FileID: "P"}, Caption: "X"}}},
			delivery.SendAudio{FileID: "A1"},
		}
		assert.NoError(t, delivery.Execute(ctx, ex, plan))
		assert.Equal(t, []string{"album", "audio"}, order)
		ex.AssertExpectations(t)
	})

	t.Run("stops on the first failing step and reports it", func(t *testing.T) {
		ex := mocks.NewMockExecutor(t)
		sendErr := errors.New("flood limit")
		ex.On("SendText", mock.Anything, "X").Return(nil).Once()
		ex.On("SendVoice", mock.Anything, "V1").Return(sendErr).Once()

		plan := delivery.Plan{
			delivery.SendText{Body: "X"},
			delivery.SendVoice{FileID: "V1"},
			delivery.SendVoice{FileID: "V2"},
		}
		err := delivery.Execute(ctx, ex, plan)
		assert.ErrorIs(t, err, sendErr)
		ex.AssertNotCalled(t, "SendVoice", mock.Anything, "V2")
		ex.AssertExpectations(t)
	})
}
