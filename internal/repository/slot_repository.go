package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

type SlotRepository struct {
	db base.DB
}

func NewSlotRepository(db base.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// FindActiveByDate получает активные слоты даты вместе с числом подтверждённых
// бронирований, упорядоченные по времени начала
func (r *SlotRepository) FindActiveByDate(ctx context.Context, date time.Time) ([]*model.SlotOccupancy, error) {
	query := `
		SELECT s.id, s.date, s.start_time, s.end_time, s.max_capacity, s.is_active,
		       s.teacher_id, s.subject_id, s.created_at,
		       COUNT(b.id) FILTER (WHERE b.status = 'CONFIRMED') AS current_bookings
		FROM time_slots s
		LEFT JOIN bookings b ON b.time_slot_id = s.id
		WHERE s.date = $1 AND s.is_active = TRUE
		GROUP BY s.id
		ORDER BY s.start_time, s.created_at
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("find slots by date: %w", err)
	}
	defer rows.Close()

	var slots []*model.SlotOccupancy
	for rows.Next() {
		var slot model.SlotOccupancy
		err := rows.Scan(
			&slot.ID,
			&slot.Date,
			&slot.StartTime,
			&slot.EndTime,
			&slot.MaxCapacity,
			&slot.IsActive,
			&slot.TeacherID,
			&slot.SubjectID,
			&slot.CreatedAt,
			&slot.CurrentBookings,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	query := `
		SELECT id, date, start_time, end_time, max_capacity, is_active, teacher_id, subject_id, created_at
		FROM time_slots
		WHERE id = $1
	`

	var slot model.TimeSlot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxCapacity,
		&slot.IsActive,
		&slot.TeacherID,
		&slot.SubjectID,
		&slot.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// FindOrCreate материализует слот: при гонке за одну пару (date, start)
// выигрывает одна вставка, остальные получают уже существующую строку
func (r *SlotRepository) FindOrCreate(ctx context.Context, date time.Time, start, end string, capacity int) (*model.TimeSlot, error) {
	query := `
		INSERT INTO time_slots (id, date, start_time, end_time, max_capacity, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (date, start_time)
		DO UPDATE SET start_time = EXCLUDED.start_time
		RETURNING id, date, start_time, end_time, max_capacity, is_active, teacher_id, subject_id, created_at
	`

	var slot model.TimeSlot
	err := r.db.QueryRow(ctx, query, uuid.New().String(), date, start, end, capacity).Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxCapacity,
		&slot.IsActive,
		&slot.TeacherID,
		&slot.SubjectID,
		&slot.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("find or create slot: %w", err)
	}

	return &slot, nil
}

// CountConfirmed считает подтверждённые бронирования слота
func (r *SlotRepository) CountConfirmed(ctx context.Context, slotID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE time_slot_id = $1 AND status = 'CONFIRMED'
	`

	var count int
	if err := r.db.QueryRow(ctx, query, slotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count confirmed bookings: %w", err)
	}

	return count, nil
}

// CreateBatch создаёт набор слотов (используется сидированием)
func (r *SlotRepository) CreateBatch(ctx context.Context, slots []*model.TimeSlot) (int, error) {
	query := `
		INSERT INTO time_slots (id, date, start_time, end_time, max_capacity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, start_time) DO NOTHING
	`

	created := 0
	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		tag, err := r.db.Exec(ctx, query, slot.ID, slot.Date, slot.StartTime, slot.EndTime, slot.MaxCapacity, slot.IsActive)
		if err != nil {
			return created, fmt.Errorf("create slot batch: %w", err)
		}
		created += int(tag.RowsAffected())
	}

	return created, nil
}

// DeleteAll удаляет все слоты (используется сидированием, только вне production)
func (r *SlotRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM time_slots`); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}
