package repository

import (
	"context"
	"fmt"

	"github.com/kotonoha-dev/booking_api/internal/model"
	"github.com/kotonoha-dev/booking_api/internal/repository/base"
)

type SubjectRepository struct {
	db base.DB
}

func NewSubjectRepository(db base.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListActive получает активные предметы, упорядоченные по названию
func (r *SubjectRepository) ListActive(ctx context.Context) ([]*model.Subject, error) {
	query := `
		SELECT id, name, description, duration, is_active, created_at
		FROM subjects
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*model.Subject
	for rows.Next() {
		var subject model.Subject
		err := rows.Scan(
			&subject.ID,
			&subject.Name,
			&subject.Description,
			&subject.Duration,
			&subject.IsActive,
			&subject.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, &subject)
	}

	return subjects, nil
}
