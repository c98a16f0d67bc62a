package model

import "time"

// DateLayout формат даты во всех публичных контрактах
const DateLayout = "2006-01-02"

type TimeSlot struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"-"`
	StartTime   string    `json:"startTime"` // HH:MM, полуоткрытый интервал [start, end)
	EndTime     string    `json:"endTime"`
	MaxCapacity int       `json:"maxCapacity"`
	IsActive    bool      `json:"isActive"`
	TeacherID   *string   `json:"teacherId,omitempty"`
	SubjectID   *string   `json:"subjectId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DateString возвращает дату слота в формате YYYY-MM-DD
func (s *TimeSlot) DateString() string {
	return s.Date.Format(DateLayout)
}

// AvailableSlot слот в ответе на запрос доступности
type AvailableSlot struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	MaxCapacity     int    `json:"maxCapacity"`
	CurrentBookings int    `json:"currentBookings"`
	Available       bool   `json:"available"`
}

// SlotOccupancy слот вместе с количеством подтверждённых бронирований
type SlotOccupancy struct {
	TimeSlot
	CurrentBookings int
}
