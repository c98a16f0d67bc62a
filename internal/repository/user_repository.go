package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

type UserRepository struct {
	db base.DB
}

func NewUserRepository(db base.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByLineID получает пользователя по идентификатору LINE
func (r *UserRepository) GetByLineID(ctx context.Context, lineUserID string) (*model.User, error) {
	return r.getOne(ctx, `WHERE line_user_id = $1`, lineUserID)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
		SELECT id, line_user_id, display_name, picture_url, email, phone, created_at
		FROM users
	` + where

	var user model.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.LineUserID,
		&user.DisplayName,
		&user.PictureURL,
		&user.Email,
		&user.Phone,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, line_user_id, display_name, picture_url, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		user.ID,
		user.LineUserID,
		user.DisplayName,
		user.PictureURL,
		user.Email,
		user.Phone,
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Update обновляет профиль пользователя
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET display_name = $1, picture_url = $2, email = $3, phone = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, user.DisplayName, user.PictureURL, user.Email, user.Phone, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
