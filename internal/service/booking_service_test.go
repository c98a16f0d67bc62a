package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/schedule"
	"go.uber.org/zap"
)

// recordingSink копит события для проверки побочных эффектов
type recordingSink struct {
	mu        sync.Mutex
	created   []*model.Booking
	cancelled []*model.Booking
}

func (s *recordingSink) BookingCreated(b *model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, b)
}

func (s *recordingSink) BookingCancelled(b *model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, b)
}

func newBooking(store *fakeStore, sink EffectSink) *BookingService {
	return NewBookingService(store, schedule.NewGenerator(10, 19, 12), jst, sink, zap.NewNop())
}

func TestReservePersistedSlot(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Аня")
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 2, true)

	sink := &recordingSink{}
	svc := newBooking(store, sink)

	booking, err := svc.Reserve(context.Background(), user.ID, slot.ID, "2025-06-10", "после школы")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if booking.ID == "" {
		t.Error("booking id must be assigned")
	}
	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", booking.Status)
	}
	if booking.TimeSlotID != slot.ID {
		t.Errorf("slot id = %s, want %s", booking.TimeSlotID, slot.ID)
	}
	if booking.Notes == nil || *booking.Notes != "после школы" {
		t.Error("notes must be preserved")
	}
	if booking.Slot == nil || booking.Slot.StartTime != "10:00" {
		t.Error("booking must carry its slot")
	}

	if len(sink.created) != 1 {
		t.Fatalf("sink got %d created events, want 1", len(sink.created))
	}

	count, _ := store.Slots().CountConfirmed(context.Background(), slot.ID)
	if count != 1 {
		t.Errorf("confirmed count = %d, want 1", count)
	}
}

func TestReserveSyntheticSlotMaterializes(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Аня")
	svc := newBooking(store, nil)

	// dynamic-2025-06-10-2: индекс 2 в сетке 10,11,13,... это 13:00
	synID := schedule.SyntheticID("2025-06-10", 2)
	booking, err := svc.Reserve(context.Background(), user.ID, synID, "2025-06-10", "")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if schedule.IsSyntheticID(booking.TimeSlotID) {
		t.Fatalf("booking must reference a materialized slot, got %s", booking.TimeSlotID)
	}
	if booking.Slot.StartTime != "13:00" || booking.Slot.EndTime != "14:00" {
		t.Errorf("slot window = %s-%s, want 13:00-14:00", booking.Slot.StartTime, booking.Slot.EndTime)
	}

	// Второй клиент по тому же синтетическому ID попадает в тот же
	// материализованный слот и при вместимости 1 получает отказ
	other := store.addUser("u2", "Боря")
	_, err = svc.Reserve(context.Background(), other.ID, synID, "2025-06-10", "")
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("second reserve = %v, want ErrSlotFull", err)
	}

	if len(store.slots) != 1 {
		t.Errorf("materialized %d slots, want 1", len(store.slots))
	}
}

func TestReserveSlotFull(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)
	first := store.addUser("u1", "Аня")
	second := store.addUser("u2", "Боря")

	svc := newBooking(store, nil)

	if _, err := svc.Reserve(context.Background(), first.ID, slot.ID, "", ""); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if _, err := svc.Reserve(context.Background(), second.ID, slot.ID, "", ""); !errors.Is(err, ErrSlotFull) {
		t.Fatalf("second reserve = %v, want ErrSlotFull", err)
	}
}

func TestReserveDuplicate(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 3, true)
	user := store.addUser("u1", "Аня")

	svc := newBooking(store, nil)

	if _, err := svc.Reserve(context.Background(), user.ID, slot.ID, "", ""); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if _, err := svc.Reserve(context.Background(), user.ID, slot.ID, "", ""); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("repeat reserve = %v, want ErrDuplicateBooking", err)
	}
}

func TestReserveErrors(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("u1", "Аня")
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	store.addSlot("slot-off", date, "10:00", "11:00", 1, false)

	svc := newBooking(store, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		slotID  string
		dateStr string
		want    error
	}{
		{"unknown user", "nobody", "slot-off", "", ErrUserNotFound},
		{"unknown slot", user.ID, "missing", "", ErrSlotNotFound},
		{"inactive slot", user.ID, "slot-off", "", ErrSlotNotFound},
		{"malformed synthetic id", user.ID, "dynamic-oops", "", ErrSlotNotFound},
		{"synthetic index out of range", user.ID, schedule.SyntheticID("2025-06-10", 99), "2025-06-10", ErrSlotNotFound},
		{"synthetic date mismatch", user.ID, schedule.SyntheticID("2025-06-10", 0), "2025-06-11", ErrSlotNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Reserve(ctx, tt.userID, tt.slotID, tt.dateStr, ""); !errors.Is(err, tt.want) {
				t.Fatalf("Reserve = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)

	const contenders = 8
	users := make([]*model.User, contenders)
	for i := range users {
		users[i] = store.addUser(string(rune('a'+i)), "Гость")
	}

	svc := newBooking(store, nil)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), users[i].ID, slot.ID, "", "")
		}(i)
	}
	wg.Wait()

	won, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || full != contenders-1 {
		t.Fatalf("winners = %d, full = %d, want exactly 1 and %d", won, full, contenders-1)
	}

	count, _ := store.Slots().CountConfirmed(context.Background(), slot.ID)
	if count != 1 {
		t.Errorf("confirmed count = %d, want 1", count)
	}
}

func TestCancelRestoresCapacity(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)
	first := store.addUser("u1", "Аня")
	second := store.addUser("u2", "Боря")

	sink := &recordingSink{}
	svc := newBooking(store, sink)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, first.ID, slot.ID, "", "")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := svc.Cancel(ctx, first.ID, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(sink.cancelled) != 1 {
		t.Fatalf("sink got %d cancelled events, want 1", len(sink.cancelled))
	}
	if sink.cancelled[0].Status != model.BookingStatusCancelled {
		t.Errorf("sink booking status = %s, want CANCELLED", sink.cancelled[0].Status)
	}

	// Вместимость восстановилась: слот снова можно забронировать
	if _, err := svc.Reserve(ctx, second.ID, slot.ID, "", ""); err != nil {
		t.Fatalf("reserve after cancel: %v", err)
	}
}

func TestCancelErrors(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)
	owner := store.addUser("u1", "Аня")
	stranger := store.addUser("u2", "Боря")

	svc := newBooking(store, nil)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, owner.ID, slot.ID, "", "")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Чужое бронирование выглядит как несуществующее
	if err := svc.Cancel(ctx, stranger.ID, booking.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("cancel by stranger = %v, want ErrBookingNotFound", err)
	}
	if err := svc.Cancel(ctx, owner.ID, "missing"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("cancel missing = %v, want ErrBookingNotFound", err)
	}

	if err := svc.Cancel(ctx, owner.ID, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Повторная отмена уже отменённого
	if err := svc.Cancel(ctx, owner.ID, booking.ID); !errors.Is(err, ErrInvalidBookingState) {
		t.Fatalf("repeat cancel = %v, want ErrInvalidBookingState", err)
	}
}

func TestCancelledBookingFreesDuplicateCheck(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 2, true)
	user := store.addUser("u1", "Аня")

	svc := newBooking(store, nil)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, user.ID, slot.ID, "", "")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.Cancel(ctx, user.ID, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// После отмены тот же пользователь может записаться на слот снова
	if _, err := svc.Reserve(ctx, user.ID, slot.ID, "", ""); err != nil {
		t.Fatalf("reserve after cancel = %v, want success", err)
	}
}

func TestListForUser(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slotA := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)
	slotB := store.addSlot("slot-11", date, "11:00", "12:00", 1, true)
	user := store.addUser("u1", "Аня")
	other := store.addUser("u2", "Боря")

	svc := newBooking(store, nil)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, user.ID, slotA.ID, "", ""); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Reserve(ctx, user.ID, slotB.ID, "", ""); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.Reserve(ctx, other.ID, slotA.ID, "", ""); err == nil {
		t.Fatal("slot-10 should be full")
	}

	bookings, err := svc.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("got %d bookings, want 2", len(bookings))
	}
	for _, b := range bookings {
		if b.Slot == nil {
			t.Error("booking must carry its slot")
		}
	}
}

func TestGetForUser(t *testing.T) {
	store := newFakeStore()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
	slot := store.addSlot("slot-10", date, "10:00", "11:00", 1, true)
	user := store.addUser("u1", "Аня")
	stranger := store.addUser("u2", "Боря")

	svc := newBooking(store, nil)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, user.ID, slot.ID, "", "")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	got, err := svc.GetForUser(ctx, user.ID, booking.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if got.ID != booking.ID {
		t.Errorf("got booking %s, want %s", got.ID, booking.ID)
	}

	if _, err := svc.GetForUser(ctx, stranger.ID, booking.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("GetForUser by stranger = %v, want ErrBookingNotFound", err)
	}
}
