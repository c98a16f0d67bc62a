package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotonoha-dev/booking_api/internal/auth"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/service"
	"go.uber.org/zap"
)

// AvailabilityService расчёт доступности и сидирование слотов
type AvailabilityService interface {
	ListAvailable(ctx context.Context, date string) ([]*model.AvailableSlot, error)
	SeedDefaultSlots(ctx context.Context, days int) (int, error)
}

// BookingService операции с бронированиями
type BookingService interface {
	Reserve(ctx context.Context, userID, slotID, date, notes string) (*model.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) error
	ListForUser(ctx context.Context, userID string) ([]*model.Booking, error)
	GetForUser(ctx context.Context, userID, bookingID string) (*model.Booking, error)
}

// UserService операции с пользователями
type UserService interface {
	GetOrCreate(ctx context.Context, profile *auth.Profile) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, displayName, email, phone *string) (*model.User, error)
}

// ReferenceService справочные данные
type ReferenceService interface {
	Teachers(ctx context.Context) ([]*model.Teacher, error)
	Subjects(ctx context.Context) ([]*model.Subject, error)
}

type Handler struct {
	availability AvailabilityService
	bookings     BookingService
	users        UserService
	reference    ReferenceService
	logger       *zap.Logger
}

func NewHandler(
	availability AvailabilityService,
	bookings BookingService,
	users UserService,
	reference ReferenceService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		availability: availability,
		bookings:     bookings,
		users:        users,
		reference:    reference,
		logger:       logger,
	}
}

// respondError сопоставляет доменные ошибки со стабильными HTTP-ответами.
// Неизвестные ошибки логируются и уходят наружу обезличенной 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
	case errors.Is(err, service.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
	case errors.Is(err, service.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": "This time slot is fully booked"})
	case errors.Is(err, service.ErrDuplicateBooking):
		c.JSON(http.StatusConflict, gin.H{"error": "You have already booked this time slot"})
	case errors.Is(err, service.ErrInvalidBookingState):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking cannot be cancelled"})
	case errors.Is(err, service.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "Time slot is temporarily unavailable, please retry"})
	default:
		h.logger.Error("Unhandled API error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
