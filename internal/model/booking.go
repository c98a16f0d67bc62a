package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED" // Выставляется вне этого сервиса
	BookingStatusNoShow    BookingStatus = "NO_SHOW"   // Выставляется вне этого сервиса
)

type Booking struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	TimeSlotID       string        `json:"timeSlotId"`
	TeacherID        *string       `json:"teacherId,omitempty"`
	SubjectID        *string       `json:"subjectId,omitempty"`
	Status           BookingStatus `json:"status"`
	Notes            *string       `json:"notes,omitempty"`
	ExternalEventRef *string       `json:"-"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	// Дополнительные поля для удобства (не из БД)
	Slot    *TimeSlot `json:"slot,omitempty"`
	User    *User     `json:"user,omitempty"`
	Teacher *Teacher  `json:"teacher,omitempty"`
	Subject *Subject  `json:"subject,omitempty"`
}
