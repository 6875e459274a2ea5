package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// ProjectFilter narrows a project listing. Nil fields are ignored.
type ProjectFilter struct {
	Archived     *bool
	DepartmentID *int
	ID           *int
}

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// List returns projects with department name and coordinator ids joined in.
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	query := `
        SELECT
            p.id,
            p.name,
            p.department_id,
            COALESCE(d.name, ''),
            p.billing_model,
            p.hourly_rate,
            p.fixed_price,
            p.archived,
            p.created_at,
            p.updated_at,
            COALESCE(array_agg(pc.user_id) FILTER (WHERE pc.user_id IS NOT NULL), '{}')
        FROM projects p
        LEFT JOIN departments d ON d.id = p.department_id
        LEFT JOIN project_coordinators pc ON pc.project_id = p.id
        WHERE ($1::boolean IS NULL OR p.archived = $1)
          AND ($2::integer IS NULL OR p.department_id = $2)
          AND ($3::integer IS NULL OR p.id = $3)
        GROUP BY p.id, d.name
        ORDER BY p.id
    `

	rows, err := r.db.Query(ctx, query, filter.Archived, filter.DepartmentID, filter.ID)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}

	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.DepartmentID,
			&p.DepartmentName,
			&p.Billing,
			&p.HourlyRate,
			&p.FixedPrice,
			&p.Archived,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Coordinators,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// DepartmentExists reports whether a department id is known.
func (r *ProjectRepository) DepartmentExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check department", zap.Int("department_id", id), zap.Error(err))
		return false, err
	}
	return exists, nil
}
