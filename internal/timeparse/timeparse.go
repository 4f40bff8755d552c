// Package timeparse извлекает из русского текста дату/время события и форматирует
// их для подсказки модели. Результат чисто справочный: эвристика может выбрать и
// прошедшую дату, планировать по ней ничего нельзя.
package timeparse

import (
	"fmt"
	"regexp"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/ru"
)

// durationRe отсекает длительности ("2.4 часа", "3 часа"), которые парсер дат
// принимает за время события. \b после кириллицы в RE2 не работает, поэтому
// матчим по основе "час" без границы справа.
var durationRe = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*час`)

// Annotator ищет дату события в тексте.
type Annotator struct {
	parser *when.Parser
	loc    *time.Location
}

// New создает Annotator для заданной таймзоны (по умолчанию Europe/Moscow).
func New(tzName string) (*Annotator, error) {
	if tzName == "" {
		tzName = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tzName, err)
	}
	w := when.New(nil)
	w.Add(ru.All...)
	w.Add(common.All...)
	return &Annotator{parser: w, loc: loc}, nil
}

// EventTime возвращает найденную в тексте дату события. Второе значение false,
// если даты нет или совпавший фрагмент — длительность.
func (a *Annotator) EventTime(text string) (time.Time, bool) {
	now := time.Now().In(a.loc)
	res, err := a.parser.Parse(text, now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	if durationRe.MatchString(res.Text) {
		return time.Time{}, false
	}
	return res.Time.In(a.loc), true
}

// Annotate дописывает к тексту строку с датой события, если она нашлась.
func (a *Annotator) Annotate(text string) string {
	dt, ok := a.EventTime(text)
	if !ok {
		return text
	}
	return fmt.Sprintf("%s\n\n[Дата/время]: %s", text, FormatRU(dt))
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatRU форматирует момент по-русски: "7 сентября 2026, 19:30 MSK".
func FormatRU(t time.Time) string {
	zone, _ := t.Zone()
	return fmt.Sprintf("%d %s %d, %02d:%02d %s",
		t.Day(), ruMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute(), zone)
}
