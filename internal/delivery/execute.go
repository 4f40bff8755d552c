package delivery

import (
	"context"
	"fmt"
)

// Executor — транспортная граница исполнения плана. Реализация знает, в какой
// канал отправлять.
type Executor interface {
	SendText(ctx context.Context, body string) error
	SendSingle(ctx context.Context, action SendSingle) error
	SendAlbum(ctx context.Context, action SendAlbum) error
	SendAudio(ctx context.Context, fileID string) error
	SendVoice(ctx context.Context, fileID string) error
}

// Execute прогоняет план шаг за шагом. Первая ошибка останавливает исполнение и
// возвращается с номером шага; ретраи — забота транспорта, не плана.
func Execute(ctx context.Context, ex Executor, plan Plan) error {
	for i, action := range plan {
		var err error
		switch a := action.(type) {
		case SendText:
			err = ex.SendText(ctx, a.Body)
		case SendSingle:
			err = ex.SendSingle(ctx, a)
		case SendAlbum:
			err = ex.SendAlbum(ctx, a)
		case SendAudio:
			err = ex.SendAudio(ctx, a.FileID)
		case SendVoice:
			err = ex.SendVoice(ctx, a.FileID)
		default:
			err = fmt.Errorf("unknown action %T", action)
		}
		if err != nil {
			return fmt.Errorf("delivery step %d/%d (%T): %w", i+1, len(plan), action, err)
		}
	}
	return nil
}
