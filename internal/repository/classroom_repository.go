package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

const classroomColumns = `id, department_id, code, name, rows, cols, seats_per_desk, capacity, capacity_override`

// ClassroomRepository reads exam rooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

func (r *ClassroomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByDepartment returns department rooms, largest effective capacity first.
func (r *ClassroomRepository) ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Classroom, error) {
	var rooms []models.Classroom
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE department_id = $1 ORDER BY COALESCE(capacity_override, capacity) DESC, code`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rooms, query, departmentID); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns a classroom or sql.ErrNoRows.
func (r *ClassroomRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Classroom, error) {
	var room models.Classroom
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.exec(exec), &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}
