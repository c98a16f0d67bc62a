package repository

import (
	"context"
	"fmt"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

type TeacherRepository struct {
	db base.DB
}

func NewTeacherRepository(db base.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// ListActive получает активных преподавателей, упорядоченных по имени
func (r *TeacherRepository) ListActive(ctx context.Context) ([]*model.Teacher, error) {
	query := `
		SELECT id, name, picture_url, bio, specialties, is_active, created_at
		FROM teachers
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		var teacher model.Teacher
		err := rows.Scan(
			&teacher.ID,
			&teacher.Name,
			&teacher.PictureURL,
			&teacher.Bio,
			&teacher.Specialties,
			&teacher.IsActive,
			&teacher.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, &teacher)
	}

	return teachers, nil
}
