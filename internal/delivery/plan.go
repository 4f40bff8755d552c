// Package delivery строит план публикации черновика: какие сообщения и в каком
// порядке отправить в канал. План — чистые данные, его исполнение лежит на транспорте.
package delivery

import "post-bot/internal/model"

// Action — один шаг плана публикации.
type Action interface {
	isAction()
}

// SendText — текстовое сообщение без медиа.
type SendText struct {
	Body string
}

// SendSingle — одиночное фото или видео с подписью.
type SendSingle struct {
	Item    model.MediaItem
	Caption string
}

// AlbumItem — элемент альбома. Подпись непустая только у первого элемента.
type AlbumItem struct {
	Item    model.MediaItem
	Caption string
}

// SendAlbum — альбом из фото/видео.
type SendAlbum struct {
	Items []AlbumItem
}

// SendAudio — отдельная отправка аудио, без подписи.
type SendAudio struct {
	FileID string
}

// SendVoice — отдельная отправка голосового сообщения, без подписи.
type SendVoice struct {
	FileID string
}

func (SendText) isAction()   {}
func (SendSingle) isAction() {}
func (SendAlbum) isAction()  {}
func (SendAudio) isAction()  {}
func (SendVoice) isAction()  {}

// Plan — упорядоченный список шагов публикации.
type Plan []Action

// BuildPlan консолидирует медиа черновика в план доставки. Функция детерминирована:
// одинаковый черновик всегда дает одинаковый план.
//
// Правила:
//   - без медиа — одно текстовое сообщение;
//   - ровно одно фото/видео и ничего больше — одиночная отправка с подписью;
//   - иначе фото/видео собираются в альбом (подпись только на первом элементе),
//     затем аудио, затем голосовые — каждый отдельным сообщением, порядок внутри
//     типа совпадает с порядком прикрепления;
//   - только аудио/голосовые без фото/видео — сначала текст поста отдельным
//     сообщением, потом медиа, чтобы подпись не терялась.
//
// maxItems дублирует лимит, который уже проверялся при добавлении: на чтении перед
// публикацией список усекается еще раз.
func BuildPlan(post *model.DraftPost, maxItems int) Plan {
	media := post.Media
	if maxItems > 0 && len(media) > maxItems {
		media = media[:maxItems]
	}

	if len(media) == 0 {
		return Plan{SendText{Body: post.PostText}}
	}

	var visual []model.MediaItem
	var audios, voices []string
	for _, item := range media {
		switch {
		case item.Kind.IsVisual():
			visual = append(visual, item)
		case item.Kind == model.MediaAudio:
			audios = append(audios, item.FileID)
		case item.Kind == model.MediaVoice:
			voices = append(voices, item.FileID)
		}
	}

	var plan Plan

	switch {
	case len(visual) == 1 && len(audios) == 0 && len(voices) == 0:
		return Plan{SendSingle{Item: visual[0], Caption: post.PostText}}
	case len(visual) > 0:
		items := make([]AlbumItem, 0, len(visual))
		for i, item := range visual {
			var caption string
			if i == 0 {
				caption = post.PostText
			}
			items = append(items, AlbumItem{Item: item, Caption: caption})
		}
		plan = append(plan, SendAlbum{Items: items})
	default:
		// Только аудио/голосовые: текст поста не должен пропасть.
		plan = append(plan, SendText{Body: post.PostText})
	}

	for _, id := range audios {
		plan = append(plan, SendAudio{FileID: id})
	}
	for _, id := range voices {
		plan = append(plan, SendVoice{FileID: id})
	}
	return plan
}
