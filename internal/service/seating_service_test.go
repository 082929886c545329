package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type examDetailStub map[string]models.ExamDetail

func (s examDetailStub) FindDetailByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.ExamDetail, error) {
	detail, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &detail, nil
}

type rosterStub []models.Student

func (s rosterStub) ListByCourse(context.Context, string) ([]models.Student, error) {
	return s, nil
}

func newSeatingFixture() *SeatingService {
	exams := examDetailStub{
		"e1":     {Exam: models.Exam{ID: "e1", CourseID: "course-a", Start: "2024-03-04 09:00", RoomID: strPtr("r1")}, CourseCode: "CS101"},
		"e-free": {Exam: models.Exam{ID: "e-free", CourseID: "course-a", Start: "2024-03-04 09:00"}, CourseCode: "CS101"},
		"e-flat": {Exam: models.Exam{ID: "e-flat", CourseID: "course-a", Start: "2024-03-04 09:00", RoomID: strPtr("r-flat")}, CourseCode: "CS101"},
	}
	rooms := classroomStub{rooms: map[string]models.Classroom{
		"r1":     {ID: "r1", Code: "A-101", Rows: 1, Cols: 2, SeatsPerDesk: 2, Capacity: 4},
		"r-flat": {ID: "r-flat", Code: "HALL", Rows: 0, Cols: 5, SeatsPerDesk: 1},
	}}
	roster := rosterStub{
		{ID: "s1", Number: "001", FullName: "Ayla Demir"},
		{ID: "s2", Number: "002", FullName: "Baran Kaya"},
		{ID: "s3", Number: "003", FullName: "Cem Yilmaz"},
		{ID: "s4", Number: "004", FullName: "Deniz Ak"},
		{ID: "s5", Number: "005", FullName: "Ece Tan"},
	}
	return NewSeatingService(exams, rooms, roster, nil)
}

func TestSeatingServicePlan(t *testing.T) {
	svc := newSeatingFixture()

	resp, err := svc.Plan(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "A-101", resp.RoomCode)
	assert.Equal(t, "CS101", resp.CourseCode)
	assert.Equal(t, 4, resp.Plan.Capacity)

	require.Len(t, resp.Plan.Seated, 4)
	first := resp.Plan.Seated[0]
	assert.Equal(t, "001", first.Student.Number)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, 1, first.Col)
	assert.Equal(t, 1, first.Seat)

	second := resp.Plan.Seated[1]
	assert.Equal(t, 2, second.Col)
	assert.Equal(t, 1, second.Seat)

	require.Len(t, resp.Plan.Unseated, 1)
	assert.Equal(t, "005", resp.Plan.Unseated[0].Number)
}

func TestSeatingServicePlanErrors(t *testing.T) {
	svc := newSeatingFixture()
	ctx := context.Background()

	_, err := svc.Plan(ctx, "e-free")
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.Plan(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Plan(ctx, "e-flat")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
