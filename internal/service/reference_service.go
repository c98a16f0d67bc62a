package service

import (
	"context"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository"
)

// ReferenceService справочные данные для клиента
type ReferenceService struct {
	store repository.Store
}

func NewReferenceService(store repository.Store) *ReferenceService {
	return &ReferenceService{store: store}
}

// Teachers получает активных преподавателей
func (s *ReferenceService) Teachers(ctx context.Context) ([]*model.Teacher, error) {
	return s.store.Teachers().ListActive(ctx)
}

// Subjects получает активные предметы
func (s *ReferenceService) Subjects(ctx context.Context) ([]*model.Subject, error) {
	return s.store.Subjects().ListActive(ctx)
}
