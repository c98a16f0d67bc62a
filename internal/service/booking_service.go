package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
	"github.com/kotonoha-dev/booking_api/internal/schedule"
	"go.uber.org/zap"
)

// EffectSink принимает события жизненного цикла бронирования для
// побочных эффектов (зеркалирование в календарь, уведомления).
// Вызывается после коммита: сбой эффекта не откатывает бронирование.
type EffectSink interface {
	BookingCreated(booking *model.Booking)
	BookingCancelled(booking *model.Booking)
}

type BookingService struct {
	store  repository.Store
	gen    *schedule.Generator
	loc    *time.Location
	sink   EffectSink
	logger *zap.Logger
}

func NewBookingService(
	store repository.Store,
	gen *schedule.Generator,
	loc *time.Location,
	sink EffectSink,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:  store,
		gen:    gen,
		loc:    loc,
		sink:   sink,
		logger: logger,
	}
}

// Reserve создаёт бронирование слота для пользователя.
//
// Сначала слот разрешается: синтетический ID материализуется в строку журнала
// (или находится уже материализованная), так что проверка вместимости всегда
// идёт по реальному слоту. Затем в одной транзакции под advisory-блокировкой
// слота проверяются вместимость и дубликат и вставляется бронирование.
func (s *BookingService) Reserve(ctx context.Context, userID, slotID, dateStr, notes string) (*model.Booking, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	slot, err := s.resolveSlot(ctx, slotID, dateStr)
	if err != nil {
		return nil, err
	}

	booking, err := s.reserveSlot(ctx, user, slot, notes)
	if base.IsLockTimeout(err) {
		// Одна повторная попытка: блокировку держал конкурирующий запрос
		booking, err = s.reserveSlot(ctx, user, slot, notes)
		if base.IsLockTimeout(err) {
			return nil, ErrSlotUnavailable
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slot booked",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", userID),
		zap.String("slot_id", booking.TimeSlotID),
		zap.String("date", booking.Slot.DateString()),
		zap.String("start_time", booking.Slot.StartTime),
	)

	if s.sink != nil {
		s.sink.BookingCreated(booking)
	}

	return booking, nil
}

// resolveSlot сводит синтетический и персистентный пути к реальной строке
// журнала до любых проверок вместимости
func (s *BookingService) resolveSlot(ctx context.Context, slotID, dateStr string) (*model.TimeSlot, error) {
	if !schedule.IsSyntheticID(slotID) {
		slot, err := s.store.Slots().GetByID(ctx, slotID)
		if err != nil {
			return nil, fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		return slot, nil
	}

	synDate, index, ok := schedule.ParseSyntheticID(slotID)
	if !ok {
		return nil, ErrSlotNotFound
	}
	if dateStr != "" && dateStr != synDate {
		return nil, ErrSlotNotFound
	}

	window, ok := s.gen.WindowAt(index)
	if !ok {
		return nil, ErrSlotNotFound
	}

	date, err := time.ParseInLocation(model.DateLayout, synDate, s.loc)
	if err != nil {
		return nil, ErrSlotNotFound
	}

	slot, err := s.store.Slots().FindOrCreate(ctx, date, window.Start, window.End, 1)
	if err != nil {
		return nil, fmt.Errorf("materialize slot: %w", err)
	}

	return slot, nil
}

func (s *BookingService) reserveSlot(ctx context.Context, user *model.User, slot *model.TimeSlot, notes string) (*model.Booking, error) {
	booking := &model.Booking{
		UserID:     user.ID,
		TimeSlotID: slot.ID,
		TeacherID:  slot.TeacherID,
		SubjectID:  slot.SubjectID,
		Status:     model.BookingStatusConfirmed,
	}
	if notes != "" {
		booking.Notes = &notes
	}

	err := s.store.Atomic(ctx, func(ctx context.Context, store repository.Store) error {
		if err := store.LockSlot(ctx, slot.ID); err != nil {
			return err
		}

		// Перечитываем слот под блокировкой
		current, err := store.Slots().GetByID(ctx, slot.ID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if current == nil || !current.IsActive {
			return ErrSlotNotFound
		}

		confirmed, err := store.Slots().CountConfirmed(ctx, current.ID)
		if err != nil {
			return err
		}
		if confirmed >= current.MaxCapacity {
			return ErrSlotFull
		}

		existing, err := store.Bookings().FindConfirmedByUserAndSlot(ctx, user.ID, current.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateBooking
		}

		return store.Bookings().Create(ctx, booking)
	})
	if err != nil {
		if base.IsUniqueViolation(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	booking.Slot = slot
	booking.User = user

	return booking, nil
}

// Cancel отменяет подтверждённое бронирование пользователя.
// Вместимость слота восстанавливается сама: занятость считается
// по числу CONFIRMED-бронирований, отдельного счётчика нет.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	var booking *model.Booking

	err := s.store.Atomic(ctx, func(ctx context.Context, store repository.Store) error {
		var err error
		booking, err = store.Bookings().GetByIDForUser(ctx, bookingID, userID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		// Отменить можно только подтверждённое бронирование
		if booking.Status != model.BookingStatusConfirmed {
			return ErrInvalidBookingState
		}

		return store.Bookings().UpdateStatus(ctx, bookingID, model.BookingStatusCancelled)
	})
	if err != nil {
		return err
	}

	booking.Status = model.BookingStatusCancelled

	if booking.User == nil {
		// Имя пользователя нужно только для уведомления
		if user, err := s.store.Users().GetByID(ctx, userID); err == nil {
			booking.User = user
		}
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)

	if s.sink != nil {
		s.sink.BookingCancelled(booking)
	}

	return nil
}

// ListForUser получает все бронирования пользователя
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return s.store.Bookings().ListByUser(ctx, userID)
}

// GetForUser получает бронирование пользователя по ID
func (s *BookingService) GetForUser(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	booking, err := s.store.Bookings().GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}
