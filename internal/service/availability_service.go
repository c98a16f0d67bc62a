package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
	"github.com/kotonoha-dev/booking_api/internal/schedule"
	"go.uber.org/zap"
)

// BusySource внешний источник занятых интервалов.
// Никогда не возвращает ошибку: при недоступности календаря отдаёт пустой
// список, и расчёт доступности деградирует до «календарь игнорируем».
type BusySource interface {
	FetchBusy(ctx context.Context, date time.Time) []model.BusyInterval
}

const minutesPerDay = 24 * 60

type AvailabilityService struct {
	store    repository.Store
	busy     BusySource
	gen      *schedule.Generator
	loc      *time.Location
	leadTime time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewAvailabilityService(
	store repository.Store,
	busy BusySource,
	gen *schedule.Generator,
	loc *time.Location,
	leadTime time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		store:    store,
		busy:     busy,
		gen:      gen,
		loc:      loc,
		leadTime: leadTime,
		now:      time.Now,
		logger:   logger,
	}
}

// candidate кандидат на выдачу до фильтрации по занятым интервалам
type candidate struct {
	id          string
	start       string
	end         string
	startMin    int
	endMin      int
	maxCapacity int
	bookings    int
	generated   bool
}

// ListAvailable возвращает доступные окна записи на дату.
//
// Кандидаты берутся из журнала слотов; если на дату нет ни одной записи,
// используется сгенерированная дефолтная сетка с синтетическими ID.
// Затем отбрасываются окна, пересекающиеся с занятыми интервалами внешнего
// календаря, а для сгенерированной сетки на сегодняшнюю дату — окна,
// начинающиеся раньше lead time от текущего момента.
func (s *AvailabilityService) ListAvailable(ctx context.Context, dateStr string) ([]*model.AvailableSlot, error) {
	date, err := time.ParseInLocation(model.DateLayout, dateStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}

	candidates, err := s.collectCandidates(ctx, date, dateStr)
	if err != nil {
		return nil, err
	}

	busy := s.busy.FetchBusy(ctx, date)
	for _, interval := range busy {
		// Событие на весь день закрывает дату целиком
		if interval.AllDay {
			return []*model.AvailableSlot{}, nil
		}
	}

	result := make([]*model.AvailableSlot, 0, len(candidates))
	for _, c := range candidates {
		if s.overlapsAny(c, busy, date) {
			continue
		}
		if c.generated && s.withinLeadTime(c, date) {
			continue
		}
		result = append(result, &model.AvailableSlot{
			ID:              c.id,
			Date:            dateStr,
			StartTime:       c.start,
			EndTime:         c.end,
			MaxCapacity:     c.maxCapacity,
			CurrentBookings: c.bookings,
			Available:       c.bookings < c.maxCapacity,
		})
	}

	return result, nil
}

func (s *AvailabilityService) collectCandidates(ctx context.Context, date time.Time, dateStr string) ([]candidate, error) {
	persisted, err := s.store.Slots().FindActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find slots: %w", err)
	}

	var candidates []candidate

	if len(persisted) > 0 {
		for _, slot := range persisted {
			startMin, err := schedule.MinuteOfDay(slot.StartTime)
			if err != nil {
				return nil, err
			}
			endMin, err := schedule.MinuteOfDay(slot.EndTime)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, candidate{
				id:          slot.ID,
				start:       slot.StartTime,
				end:         slot.EndTime,
				startMin:    startMin,
				endMin:      endMin,
				maxCapacity: slot.MaxCapacity,
				bookings:    slot.CurrentBookings,
			})
		}
		return candidates, nil
	}

	// Журнал пуст: используем дефолтную сетку с синтетическими ID,
	// чтобы запись работала и до административного сидирования
	for i, w := range s.gen.Windows() {
		startMin, err := schedule.MinuteOfDay(w.Start)
		if err != nil {
			return nil, err
		}
		endMin, err := schedule.MinuteOfDay(w.End)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			id:          schedule.SyntheticID(dateStr, i),
			start:       w.Start,
			end:         w.End,
			startMin:    startMin,
			endMin:      endMin,
			maxCapacity: 1,
			generated:   true,
		})
	}

	return candidates, nil
}

// overlapsAny проверяет пересечение слота хотя бы с одним занятым интервалом.
// Интервалы полуоткрытые: соприкосновение границ пересечением не считается.
func (s *AvailabilityService) overlapsAny(c candidate, busy []model.BusyInterval, date time.Time) bool {
	for _, interval := range busy {
		busyStart, busyEnd, ok := s.minutesOnDate(interval, date)
		if !ok {
			continue
		}
		if c.startMin < busyEnd && c.endMin > busyStart {
			return true
		}
	}
	return false
}

// minutesOnDate проецирует занятый интервал на минуты данной даты
// в опорной таймзоне. ok=false, если интервал дату не задевает.
func (s *AvailabilityService) minutesOnDate(interval model.BusyInterval, date time.Time) (startMin, endMin int, ok bool) {
	dayStart := date
	dayEnd := dayStart.AddDate(0, 0, 1)

	start := interval.Start.In(s.loc)
	end := interval.End.In(s.loc)

	if !end.After(dayStart) || !start.Before(dayEnd) {
		return 0, 0, false
	}

	startMin = 0
	if start.After(dayStart) {
		startMin = int(start.Sub(dayStart).Minutes())
	}

	endMin = minutesPerDay
	if end.Before(dayEnd) {
		endMin = int(end.Sub(dayStart).Minutes())
	}

	return startMin, endMin, true
}

// withinLeadTime отсекает окна сгенерированной сетки, начинающиеся не позже
// чем через lead time от «сейчас». Применяется только к сегодняшней дате.
func (s *AvailabilityService) withinLeadTime(c candidate, date time.Time) bool {
	now := s.now().In(s.loc)
	if now.Year() != date.Year() || now.Month() != date.Month() || now.Day() != date.Day() {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()
	cutoff := nowMin + int(s.leadTime.Minutes())

	return c.startMin <= cutoff
}

// SeedDefaultSlots пересоздаёт слоты дефолтной сетки на days дней вперёд.
// Используется административным сидированием вне production.
func (s *AvailabilityService) SeedDefaultSlots(ctx context.Context, days int) (int, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	var slots []*model.TimeSlot
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		for _, w := range s.gen.Windows() {
			slots = append(slots, &model.TimeSlot{
				Date:        date,
				StartTime:   w.Start,
				EndTime:     w.End,
				MaxCapacity: 1,
				IsActive:    true,
			})
		}
	}

	var created int
	err := s.store.Atomic(ctx, func(ctx context.Context, store repository.Store) error {
		if err := store.Slots().DeleteAll(ctx); err != nil {
			return err
		}
		var err error
		created, err = store.Slots().CreateBatch(ctx, slots)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seed slots: %w", err)
	}

	s.logger.Info("Default slots seeded",
		zap.Int("days", days),
		zap.Int("created", created),
	)

	return created, nil
}
