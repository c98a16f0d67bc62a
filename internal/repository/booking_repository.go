package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

type BookingRepository struct {
	db base.DB
}

func NewBookingRepository(db base.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	query := `
		INSERT INTO bookings (id, user_id, time_slot_id, teacher_id, subject_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		booking.ID,
		booking.UserID,
		booking.TimeSlotID,
		booking.TeacherID,
		booking.SubjectID,
		booking.Status,
		booking.Notes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByIDForUser получает бронирование пользователя вместе со слотом
// и справочными данными преподавателя и предмета
func (r *BookingRepository) GetByIDForUser(ctx context.Context, id, userID string) (*model.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.time_slot_id, b.teacher_id, b.subject_id,
		       b.status, b.notes, b.external_event_ref, b.created_at, b.updated_at,
		       s.id, s.date, s.start_time, s.end_time, s.max_capacity, s.is_active, s.created_at,
		       t.id, t.name, t.picture_url, t.bio, t.specialties, t.is_active, t.created_at,
		       sub.id, sub.name, sub.description, sub.duration, sub.is_active, sub.created_at
		FROM bookings b
		JOIN time_slots s ON s.id = b.time_slot_id
		LEFT JOIN teachers t ON t.id = b.teacher_id
		LEFT JOIN subjects sub ON sub.id = b.subject_id
		WHERE b.id = $1 AND b.user_id = $2
	`

	var (
		booking model.Booking
		slot    model.TimeSlot
		teacher scanTeacher
		subject scanSubject
	)

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.TimeSlotID,
		&booking.TeacherID,
		&booking.SubjectID,
		&booking.Status,
		&booking.Notes,
		&booking.ExternalEventRef,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxCapacity,
		&slot.IsActive,
		&slot.CreatedAt,
		&teacher.ID,
		&teacher.Name,
		&teacher.PictureURL,
		&teacher.Bio,
		&teacher.Specialties,
		&teacher.IsActive,
		&teacher.CreatedAt,
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.Duration,
		&subject.IsActive,
		&subject.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	booking.Slot = &slot
	booking.Teacher = teacher.toModel()
	booking.Subject = subject.toModel()

	return &booking, nil
}

// ListByUser получает бронирования пользователя вместе со слотами,
// новые в начале
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.time_slot_id, b.teacher_id, b.subject_id,
		       b.status, b.notes, b.external_event_ref, b.created_at, b.updated_at,
		       s.id, s.date, s.start_time, s.end_time, s.max_capacity, s.is_active, s.created_at
		FROM bookings b
		JOIN time_slots s ON s.id = b.time_slot_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		var (
			booking model.Booking
			slot    model.TimeSlot
		)
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.TimeSlotID,
			&booking.TeacherID,
			&booking.SubjectID,
			&booking.Status,
			&booking.Notes,
			&booking.ExternalEventRef,
			&booking.CreatedAt,
			&booking.UpdatedAt,
			&slot.ID,
			&slot.Date,
			&slot.StartTime,
			&slot.EndTime,
			&slot.MaxCapacity,
			&slot.IsActive,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		booking.Slot = &slot
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// UpdateStatus обновляет статус бронирования
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// FindConfirmedByUserAndSlot получает подтверждённое бронирование
// пользователя на конкретный слот
func (r *BookingRepository) FindConfirmedByUserAndSlot(ctx context.Context, userID, slotID string) (*model.Booking, error) {
	query := `
		SELECT id, user_id, time_slot_id, teacher_id, subject_id, status, notes,
		       external_event_ref, created_at, updated_at
		FROM bookings
		WHERE user_id = $1 AND time_slot_id = $2 AND status = 'CONFIRMED'
		LIMIT 1
	`

	var booking model.Booking
	err := r.db.QueryRow(ctx, query, userID, slotID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.TimeSlotID,
		&booking.TeacherID,
		&booking.SubjectID,
		&booking.Status,
		&booking.Notes,
		&booking.ExternalEventRef,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find confirmed booking: %w", err)
	}

	return &booking, nil
}

// SetExternalEventRef сохраняет или очищает ссылку на событие внешнего календаря
func (r *BookingRepository) SetExternalEventRef(ctx context.Context, id string, ref *string) error {
	query := `
		UPDATE bookings
		SET external_event_ref = $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := r.db.Exec(ctx, query, ref, id); err != nil {
		return fmt.Errorf("set external event ref: %w", err)
	}

	return nil
}

// scanTeacher преподаватель из LEFT JOIN, все колонки могут быть NULL
type scanTeacher struct {
	ID          *string
	Name        *string
	PictureURL  *string
	Bio         *string
	Specialties []string
	IsActive    *bool
	CreatedAt   *time.Time
}

func (t scanTeacher) toModel() *model.Teacher {
	if t.ID == nil {
		return nil
	}
	return &model.Teacher{
		ID:          *t.ID,
		Name:        *t.Name,
		PictureURL:  t.PictureURL,
		Bio:         t.Bio,
		Specialties: t.Specialties,
		IsActive:    t.IsActive != nil && *t.IsActive,
		CreatedAt:   *t.CreatedAt,
	}
}

// scanSubject предмет из LEFT JOIN, все колонки могут быть NULL
type scanSubject struct {
	ID          *string
	Name        *string
	Description *string
	Duration    *int
	IsActive    *bool
	CreatedAt   *time.Time
}

func (s scanSubject) toModel() *model.Subject {
	if s.ID == nil {
		return nil
	}
	return &model.Subject{
		ID:          *s.ID,
		Name:        *s.Name,
		Description: s.Description,
		Duration:    *s.Duration,
		IsActive:    s.IsActive != nil && *s.IsActive,
		CreatedAt:   *s.CreatedAt,
	}
}
