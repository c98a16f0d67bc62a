package repository

import (
	"context"
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
)

// SlotStore журнал слотов (slot ledger)
type SlotStore interface {
	// FindActiveByDate возвращает активные слоты даты с числом подтверждённых
	// бронирований, упорядоченные по времени начала
	FindActiveByDate(ctx context.Context, date time.Time) ([]*model.SlotOccupancy, error)
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	// FindOrCreate материализует слот: возвращает существующий слот с той же
	// парой (date, start) или создаёт новый
	FindOrCreate(ctx context.Context, date time.Time, start, end string, capacity int) (*model.TimeSlot, error)
	CountConfirmed(ctx context.Context, slotID string) (int, error)
	CreateBatch(ctx context.Context, slots []*model.TimeSlot) (int, error)
	DeleteAll(ctx context.Context) error
}

// BookingStore хранилище бронирований
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
	FindConfirmedByUserAndSlot(ctx context.Context, userID, slotID string) (*model.Booking, error)
	SetExternalEventRef(ctx context.Context, id string, ref *string) error
}

// UserStore хранилище пользователей
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByLineID(ctx context.Context, lineUserID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

// TeacherStore справочник преподавателей
type TeacherStore interface {
	ListActive(ctx context.Context) ([]*model.Teacher, error)
}

// SubjectStore справочник предметов
type SubjectStore interface {
	ListActive(ctx context.Context) ([]*model.Subject, error)
}

// Store агрегат всех хранилищ с поддержкой транзакций.
// Atomic выполняет fn в одной транзакции: store внутри callback работает
// через неё. LockSlot берёт advisory-блокировку на слот до конца транзакции —
// это сериализует проверку вместимости и вставку бронирования по одному слоту.
type Store interface {
	Slots() SlotStore
	Bookings() BookingStore
	Users() UserStore
	Teachers() TeacherStore
	Subjects() SubjectStore
	Atomic(ctx context.Context, fn func(ctx context.Context, store Store) error) error
	LockSlot(ctx context.Context, slotID string) error
}
