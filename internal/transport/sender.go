package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"post-bot/internal/delivery"
	"post-bot/internal/model"
)

// Compile-time check to ensure ChannelSender implements delivery.Executor
var _ delivery.Executor = (*ChannelSender)(nil)

// ChannelSender исполняет план публикации в целевой канал. Цель — числовой id
// или @username; разбирается один раз при создании.
type ChannelSender struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	username string
}

// NewChannelSender разбирает цель публикации. Пустая цель — ошибка конфигурации,
// она всплывает на каждой попытке публикации, но процесс не роняет.
func NewChannelSender(api *tgbotapi.BotAPI, target string) (*ChannelSender, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, model.ErrNoPublishTarget
	}
	if id, err := strconv.ParseInt(target, 10, 64); err == nil {
		return &ChannelSender{api: api, chatID: id}, nil
	}
	if !strings.HasPrefix(target, "@") {
		target = "@" + target
	}
	return &ChannelSender{api: api, username: target}, nil
}

func (s *ChannelSender) baseChat() tgbotapi.BaseChat {
	return tgbotapi.BaseChat{ChatID: s.chatID, ChannelUsername: s.username}
}

func (s *ChannelSender) baseFile(fileID string) tgbotapi.BaseFile {
	return tgbotapi.BaseFile{BaseChat: s.baseChat(), File: tgbotapi.FileID(fileID)}
}

func (s *ChannelSender) SendText(_ context.Context, body string) error {
	_, err := s.api.Send(tgbotapi.MessageConfig{BaseChat: s.baseChat(), Text: body})
	return err
}

func (s *ChannelSender) SendSingle(_ context.Context, action delivery.SendSingle) error {
	var msg tgbotapi.Chattable
	switch action.Item.Kind {
	case model.MediaPhoto:
		msg = tgbotapi.PhotoConfig{BaseFile: s.baseFile(action.Item.FileID), Caption: action.Caption}
	case model.MediaVideo:
		msg = tgbotapi.VideoConfig{BaseFile: s.baseFile(action.Item.FileID), Caption: action.Caption}
	default:
		return fmt.Errorf("single send does not support kind %q", action.Item.Kind)
	}
	_, err := s.api.Send(msg)
	return err
}

func (s *ChannelSender) SendAlbum(_ context.Context, action delivery.SendAlbum) error {
	media := make([]interface{}, 0, len(action.Items))
	for _, it := range action.Items {
		switch it.Item.Kind {
		case model.MediaPhoto:
			m := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(it.Item.FileID))
			m.Caption = it.Caption
			media = append(media, m)
		case model.MediaVideo:
			m := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(it.Item.FileID))
			m.Caption = it.Caption
			media = append(media, m)
		default:
			return fmt.Errorf("album does not support kind %q", it.Item.Kind)
		}
	}
	group := tgbotapi.MediaGroupConfig{
		ChatID:          s.chatID,
		ChannelUsername: s.username,
		Media:           media,
	}
	_, err := s.api.SendMediaGroup(group)
	return err
}

func (s *ChannelSender) SendAudio(_ context.Context, fileID string) error {
	_, err := s.api.Send(tgbotapi.AudioConfig{BaseFile: s.baseFile(fileID)})
	return err
}

func (s *ChannelSender) SendVoice(_ context.Context, fileID string) error {
	_, err := s.api.Send(tgbotapi.VoiceConfig{BaseFile: s.baseFile(fileID)})
	return err
}
