package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
	"go.uber.org/zap"
)

// CalendarMirror запись зеркальных событий во внешний календарь
type CalendarMirror interface {
	InsertEvent(ctx context.Context, summary string, date time.Time, start, end string) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// AdminNotifier уведомления администратору о событиях бронирования
type AdminNotifier interface {
	BookingCreated(ctx context.Context, userName, date, timeRange string) error
	BookingCancelled(ctx context.Context, userName, date, timeRange string) error
}

type sinkKind int

const (
	sinkBookingCreated sinkKind = iota
	sinkBookingCancelled
)

type sinkJob struct {
	kind    sinkKind
	booking *model.Booking
}

// EffectSink выполняет побочные эффекты бронирования после коммита:
// зеркалирование в календарь и уведомление администратору.
// Эффекты fire-and-forget: сбой логируется и никогда не влияет
// на уже зафиксированное бронирование.
type EffectSink struct {
	calendar CalendarMirror // nil, если календарь не настроен
	notifier AdminNotifier  // nil, если уведомления не настроены
	bookings repository.BookingStore
	logger   *zap.Logger

	jobs     chan sinkJob
	stopChan chan struct{}
	wg       sync.WaitGroup
	timeout  time.Duration
}

// NewEffectSink создаёт обработчик побочных эффектов
func NewEffectSink(
	calendar CalendarMirror,
	notifier AdminNotifier,
	bookings repository.BookingStore,
	logger *zap.Logger,
) *EffectSink {
	return &EffectSink{
		calendar: calendar,
		notifier: notifier,
		bookings: bookings,
		logger:   logger,
		jobs:     make(chan sinkJob, 64),
		stopChan: make(chan struct{}),
		timeout:  10 * time.Second,
	}
}

// Start запускает фонового обработчика
func (s *EffectSink) Start() {
	s.logger.Info("Starting effect sink")
	s.wg.Add(1)
	go s.run()
}

// Stop останавливает обработчика, дождавшись текущей задачи
func (s *EffectSink) Stop() {
	s.logger.Info("Stopping effect sink")
	close(s.stopChan)
	s.wg.Wait()
}

// BookingCreated ставит в очередь эффекты созданного бронирования
func (s *EffectSink) BookingCreated(booking *model.Booking) {
	s.enqueue(sinkJob{kind: sinkBookingCreated, booking: booking})
}

// BookingCancelled ставит в очередь эффекты отменённого бронирования
func (s *EffectSink) BookingCancelled(booking *model.Booking) {
	s.enqueue(sinkJob{kind: sinkBookingCancelled, booking: booking})
}

func (s *EffectSink) enqueue(job sinkJob) {
	select {
	case s.jobs <- job:
	default:
		// Очередь переполнена: бронирование уже зафиксировано,
		// эффект просто теряется с записью в лог
		s.logger.Warn("Effect sink queue full, dropping job",
			zap.String("booking_id", job.booking.ID))
	}
}

func (s *EffectSink) run() {
	defer s.wg.Done()

	for {
		select {
		case job := <-s.jobs:
			s.process(job)
		case <-s.stopChan:
			s.logger.Info("Effect sink stopped")
			return
		}
	}
}

func (s *EffectSink) process(job sinkJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	switch job.kind {
	case sinkBookingCreated:
		s.processCreated(ctx, job.booking)
	case sinkBookingCancelled:
		s.processCancelled(ctx, job.booking)
	}
}

func (s *EffectSink) processCreated(ctx context.Context, booking *model.Booking) {
	date, timeRange := bookingSchedule(booking)
	userName := bookingUserName(booking)

	if s.calendar != nil && booking.Slot != nil {
		summary := fmt.Sprintf("Урок: %s", userName)
		ref, err := s.calendar.InsertEvent(ctx, summary, booking.Slot.Date, booking.Slot.StartTime, booking.Slot.EndTime)
		if err != nil {
			s.logger.Warn("Calendar mirror failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		} else if err := s.bookings.SetExternalEventRef(ctx, booking.ID, &ref); err != nil {
			s.logger.Warn("Saving external event ref failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, userName, date, timeRange); err != nil {
			s.logger.Warn("Admin notification failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}
}

func (s *EffectSink) processCancelled(ctx context.Context, booking *model.Booking) {
	date, timeRange := bookingSchedule(booking)

	if s.calendar != nil && booking.ExternalEventRef != nil {
		if err := s.calendar.DeleteEvent(ctx, *booking.ExternalEventRef); err != nil {
			s.logger.Warn("Calendar mirror deletion failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		} else if err := s.bookings.SetExternalEventRef(ctx, booking.ID, nil); err != nil {
			s.logger.Warn("Clearing external event ref failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.BookingCancelled(ctx, bookingUserName(booking), date, timeRange); err != nil {
			s.logger.Warn("Admin notification failed",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}
}

func bookingSchedule(booking *model.Booking) (date, timeRange string) {
	if booking.Slot == nil {
		return "", ""
	}
	return booking.Slot.DateString(), fmt.Sprintf("%s-%s", booking.Slot.StartTime, booking.Slot.EndTime)
}

func bookingUserName(booking *model.Booking) string {
	if booking.User != nil {
		return booking.User.DisplayName
	}
	return booking.UserID
}
