package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
)

// fakeStore потокобезопасное in-memory хранилище для тестов.
// Advisory-блокировка слота эмулируется мьютексом на slot id,
// который держится до конца Atomic, как и в Postgres.
type fakeStore struct {
	mu        sync.Mutex
	slots     map[string]*model.TimeSlot
	bookings  map[string]*model.Booking
	users     map[string]*model.User
	teachers  []*model.Teacher
	subjects  []*model.Subject
	slotLocks map[string]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:     make(map[string]*model.TimeSlot),
		bookings:  make(map[string]*model.Booking),
		users:     make(map[string]*model.User),
		slotLocks: make(map[string]*sync.Mutex),
	}
}

func (f *fakeStore) addUser(id, name string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &model.User{ID: id, LineUserID: "line-" + id, DisplayName: name, CreatedAt: time.Now()}
	f.users[id] = user
	return user
}

func (f *fakeStore) addSlot(id string, date time.Time, start, end string, capacity int, active bool) *model.TimeSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot := &model.TimeSlot{
		ID:          id,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: capacity,
		IsActive:    active,
		CreatedAt:   time.Now(),
	}
	f.slots[id] = slot
	return slot
}

func (f *fakeStore) countConfirmedLocked(slotID string) int {
	count := 0
	for _, b := range f.bookings {
		if b.TimeSlotID == slotID && b.Status == model.BookingStatusConfirmed {
			count++
		}
	}
	return count
}

func (f *fakeStore) Slots() repository.SlotStore       { return &fakeSlots{f} }
func (f *fakeStore) Bookings() repository.BookingStore { return &fakeBookings{f} }
func (f *fakeStore) Users() repository.UserStore       { return &fakeUsers{f} }
func (f *fakeStore) Teachers() repository.TeacherStore { return &fakeTeachers{f} }
func (f *fakeStore) Subjects() repository.SubjectStore { return &fakeSubjects{f} }

func (f *fakeStore) Atomic(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	tx := &fakeTx{fakeStore: f}
	err := fn(ctx, tx)
	tx.releaseLocks()
	return err
}

func (f *fakeStore) LockSlot(ctx context.Context, slotID string) error {
	panic("LockSlot вне Atomic")
}

// fakeTx представление хранилища внутри Atomic
type fakeTx struct {
	*fakeStore
	held []*sync.Mutex
}

func (t *fakeTx) Atomic(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	return fn(ctx, t)
}

func (t *fakeTx) LockSlot(ctx context.Context, slotID string) error {
	t.mu.Lock()
	lock, ok := t.slotLocks[slotID]
	if !ok {
		lock = &sync.Mutex{}
		t.slotLocks[slotID] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	t.held = append(t.held, lock)
	return nil
}

func (t *fakeTx) releaseLocks() {
	for _, lock := range t.held {
		lock.Unlock()
	}
	t.held = nil
}

type fakeSlots struct{ s *fakeStore }

func (r *fakeSlots) FindActiveByDate(ctx context.Context, date time.Time) ([]*model.SlotOccupancy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*model.SlotOccupancy
	for _, slot := range r.s.slots {
		if !slot.IsActive || !sameDay(slot.Date, date) {
			continue
		}
		result = append(result, &model.SlotOccupancy{
			TimeSlot:        *slot,
			CurrentBookings: r.s.countConfirmedLocked(slot.ID),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *fakeSlots) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlots) FindOrCreate(ctx context.Context, date time.Time, start, end string, capacity int) (*model.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, slot := range r.s.slots {
		if sameDay(slot.Date, date) && slot.StartTime == start {
			copied := *slot
			return &copied, nil
		}
	}

	slot := &model.TimeSlot{
		ID:          uuid.New().String(),
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: capacity,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	r.s.slots[slot.ID] = slot

	copied := *slot
	return &copied, nil
}

func (r *fakeSlots) CountConfirmed(ctx context.Context, slotID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countConfirmedLocked(slotID), nil
}

func (r *fakeSlots) CreateBatch(ctx context.Context, slots []*model.TimeSlot) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := 0
	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		r.s.slots[slot.ID] = slot
		created++
	}
	return created, nil
}

func (r *fakeSlots) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.slots = make(map[string]*model.TimeSlot)
	return nil
}

type fakeBookings struct{ s *fakeStore }

func (r *fakeBookings) Create(ctx context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	copied := *booking
	r.s.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookings) GetByIDForUser(ctx context.Context, id, userID string) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok || booking.UserID != userID {
		return nil, nil
	}

	copied := *booking
	if slot, ok := r.s.slots[booking.TimeSlotID]; ok {
		slotCopy := *slot
		copied.Slot = &slotCopy
	}
	return &copied, nil
}

func (r *fakeBookings) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*model.Booking
	for _, b := range r.s.bookings {
		if b.UserID != userID {
			continue
		}
		copied := *b
		if slot, ok := r.s.slots[b.TimeSlotID]; ok {
			slotCopy := *slot
			copied.Slot = &slotCopy
		}
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *fakeBookings) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookings) FindConfirmedByUserAndSlot(ctx context.Context, userID, slotID string) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.UserID == userID && b.TimeSlotID == slotID && b.Status == model.BookingStatusConfirmed {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookings) SetExternalEventRef(ctx context.Context, id string, ref *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if booking, ok := r.s.bookings[id]; ok {
		booking.ExternalEventRef = ref
	}
	return nil
}

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUsers) GetByLineID(ctx context.Context, lineUserID string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.LineUserID == lineUserID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUsers) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()

	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *fakeUsers) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

type fakeTeachers struct{ s *fakeStore }

func (r *fakeTeachers) ListActive(ctx context.Context) ([]*model.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.teachers, nil
}

type fakeSubjects struct{ s *fakeStore }

func (r *fakeSubjects) ListActive(ctx context.Context) ([]*model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.subjects, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
