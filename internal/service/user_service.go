package service

import (
	"context"
	"fmt"

	"github.com/kotonoha-dev/booking_api/internal/auth"
	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewUserService(store repository.Store, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// GetOrCreate возвращает пользователя по LINE-профилю,
// создавая его при первом аутентифицированном запросе
func (s *UserService) GetOrCreate(ctx context.Context, profile *auth.Profile) (*model.User, error) {
	user, err := s.store.Users().GetByLineID(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user by line id: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{
		LineUserID:  profile.UserID,
		DisplayName: profile.DisplayName,
	}
	if profile.PictureURL != "" {
		pictureURL := profile.PictureURL
		user.PictureURL = &pictureURL
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("line_user_id", user.LineUserID),
	)

	return user, nil
}

// UpdateProfile обновляет отображаемое имя и контакты пользователя.
// nil-поля не трогаются.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, displayName, email, phone *string) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if displayName != nil && *displayName != "" {
		user.DisplayName = *displayName
	}
	if email != nil {
		user.Email = email
	}
	if phone != nil {
		user.Phone = phone
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}
