package model

import "time"

// BusyInterval занятый интервал из внешнего календаря.
// Не хранится в БД, используется только при расчёте доступности.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	AllDay bool // событие на весь день блокирует все слоты даты
}
