package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

// PgStore реализация Store поверх pgx
type PgStore struct {
	pool *pgxpool.Pool // nil внутри транзакции
	db   base.DB

	slots    *SlotRepository
	bookings *BookingRepository
	users    *UserRepository
	teachers *TeacherRepository
	subjects *SubjectRepository
}

// NewPgStore создаёт хранилище поверх пула соединений
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return newPgStore(pool, pool)
}

func newPgStore(pool *pgxpool.Pool, db base.DB) *PgStore {
	return &PgStore{
		pool:     pool,
		db:       db,
		slots:    NewSlotRepository(db),
		bookings: NewBookingRepository(db),
		users:    NewUserRepository(db),
		teachers: NewTeacherRepository(db),
		subjects: NewSubjectRepository(db),
	}
}

func (s *PgStore) Slots() SlotStore       { return s.slots }
func (s *PgStore) Bookings() BookingStore { return s.bookings }
func (s *PgStore) Users() UserStore       { return s.users }
func (s *PgStore) Teachers() TeacherStore { return s.teachers }
func (s *PgStore) Subjects() SubjectStore { return s.subjects }

// Atomic выполняет fn в транзакции
func (s *PgStore) Atomic(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if s.pool == nil {
		// Уже внутри транзакции, вложенные не начинаем
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newPgStore(nil, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// LockSlot берёт advisory-блокировку на слот до конца текущей транзакции.
// Ожидание ограничено, чтобы конкурирующий запрос не висел бесконечно.
func (s *PgStore) LockSlot(ctx context.Context, slotID string) error {
	if s.pool != nil {
		return fmt.Errorf("lock slot: must be called inside a transaction")
	}

	if _, err := s.db.Exec(ctx, `SET LOCAL lock_timeout = '3s'`); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := s.db.Exec(ctx, query, slotID); err != nil {
		return fmt.Errorf("lock slot %s: %w", slotID, err)
	}

	return nil
}
