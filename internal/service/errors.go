package service

import "errors"

// Доменные ошибки. HTTP-слой сопоставляет их со стабильными кодами ответов.
var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotFull            = errors.New("slot is fully booked")
	ErrDuplicateBooking    = errors.New("slot already booked by this user")
	ErrSlotUnavailable     = errors.New("slot is temporarily unavailable")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidBookingState = errors.New("booking is not in a cancellable state")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidDate         = errors.New("invalid date")
)
