package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// syntheticPrefix префикс идентификатора нематериализованного слота
const syntheticPrefix = "dynamic-"

// Window каноническое окно расписания, время в формате HH:MM
type Window struct {
	Start string
	End   string
}

// Generator генерирует дефолтную сетку слотов на день.
// Чистая функция от конфигурации: без побочных эффектов, детерминированная.
type Generator struct {
	openHour  int
	closeHour int
	breakHour int
}

// NewGenerator создаёт генератор часовых окон между openHour и closeHour,
// пропуская окно, начинающееся в breakHour (перерыв). breakHour < 0 отключает перерыв.
func NewGenerator(openHour, closeHour, breakHour int) *Generator {
	return &Generator{
		openHour:  openHour,
		closeHour: closeHour,
		breakHour: breakHour,
	}
}

// Windows возвращает упорядоченную сетку окон на день.
// Позиция окна в срезе — его стабильный индекс для синтетического ID.
func (g *Generator) Windows() []Window {
	var windows []Window
	for h := g.openHour; h < g.closeHour; h++ {
		if h == g.breakHour {
			continue
		}
		windows = append(windows, Window{
			Start: fmt.Sprintf("%02d:00", h),
			End:   fmt.Sprintf("%02d:00", h+1),
		})
	}
	return windows
}

// WindowAt возвращает окно по стабильному индексу
func (g *Generator) WindowAt(index int) (Window, bool) {
	windows := g.Windows()
	if index < 0 || index >= len(windows) {
		return Window{}, false
	}
	return windows[index], true
}

// SyntheticID строит идентификатор вида dynamic-<date>-<index>
// для слота, который ещё не материализован в БД
func SyntheticID(date string, index int) string {
	return fmt.Sprintf("%s%s-%d", syntheticPrefix, date, index)
}

// IsSyntheticID проверяет, является ли идентификатор синтетическим
func IsSyntheticID(id string) bool {
	return strings.HasPrefix(id, syntheticPrefix)
}

// ParseSyntheticID разбирает dynamic-<date>-<index> на дату и индекс окна
func ParseSyntheticID(id string) (date string, index int, ok bool) {
	rest, found := strings.CutPrefix(id, syntheticPrefix)
	if !found {
		return "", 0, false
	}

	// Дата содержит дефисы, поэтому отрезаем индекс с конца
	sep := strings.LastIndex(rest, "-")
	if sep <= 0 || sep == len(rest)-1 {
		return "", 0, false
	}

	date = rest[:sep]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", 0, false
	}

	index, err := strconv.Atoi(rest[sep+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}

	return date, index, true
}

// MinuteOfDay переводит HH:MM в минуты от полуночи
func MinuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
