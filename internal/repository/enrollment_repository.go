package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// EnrollmentRepository reads the student/course relation.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByDepartment returns every enrollment pair for courses of the department.
func (r *EnrollmentRepository) ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	const query = `SELECT e.student_id, e.course_id FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.department_id = $1 ORDER BY e.course_id, e.student_id`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &enrollments, query, departmentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
