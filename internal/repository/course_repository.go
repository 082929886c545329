package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// CourseRepository reads department courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByDepartment returns the courses of a department ordered by code.
func (r *CourseRepository) ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Course, error) {
	var courses []models.Course
	const query = `SELECT id, department_id, code, name, class_year FROM courses WHERE department_id = $1 ORDER BY code, id`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &courses, query, departmentID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
