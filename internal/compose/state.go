// Package compose реализует диалоговую машину состояний составления поста.
// Состояние — единственный способ понять, что значит входящее сообщение:
// фото в StateAwaitingMedia — это "добавь к посту", а в StateIdle — случайный ввод.
package compose

// State — режим диалога одного пользователя.
type State int

const (
	// StateIdle — обычный режим: текст запускает генерацию, кнопки управляют черновиком.
	StateIdle State = iota
	// StateAwaitingEdit — следующий текст целиком заменит текст поста, без генерации.
	StateAwaitingEdit
	// StateAwaitingMedia — входящие фото/видео/аудио прикрепляются к черновику.
	StateAwaitingMedia
)

func (s State) String() string {
	switch s {
	case StateAwaitingEdit:
		return "awaiting_edit"
	case StateAwaitingMedia:
		return "awaiting_media"
	default:
		return "idle"
	}
}

// Event — вид входящего события для таблицы переходов.
type Event int

const (
	EventText Event = iota
	EventMedia
	EventEdit
	EventAttach
	EventMediaDone
	EventStyle
	EventPublish
	EventCancel
	// EventReset — принудительный сброс при потерянном черновике.
	EventReset
)

// Next — чистая таблица переходов (state, event) -> state. Побочные эффекты
// (мутации черновика, вызовы генерации) выполняет Machine, сама таблица только
// определяет следующий режим.
func Next(s State, ev Event) State {
	switch ev {
	case EventCancel, EventPublish, EventMediaDone, EventReset:
		return StateIdle
	case EventEdit:
		if s == StateIdle {
			return StateAwaitingEdit
		}
	case EventAttach:
		if s == StateIdle {
			return StateAwaitingMedia
		}
	case EventText:
		if s == StateAwaitingEdit {
			return StateIdle
		}
	}
	return s
}
