package models

import "time"

// ExamType mirrors the planner exam kinds as stored in the exams table.
type ExamType string

// Supported exam types.
const (
	ExamTypeMidterm ExamType = "MIDTERM"
	ExamTypeFinal   ExamType = "FINAL"
	ExamTypeMakeup  ExamType = "MAKEUP"
)

// Exam is the persisted exam of a course. Start uses the fixed
// "YYYY-MM-DD HH:MM" text form.
type Exam struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Start       string    `db:"exam_start" json:"exam_start"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	RoomID      *string   `db:"room_id" json:"room_id,omitempty"`
	ExamType    ExamType  `db:"exam_type" json:"exam_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ExamDetail joins an exam with its course and room labels.
type ExamDetail struct {
	Exam
	DepartmentID string  `db:"department_id" json:"department_id"`
	CourseCode   string  `db:"course_code" json:"course_code"`
	CourseName   string  `db:"course_name" json:"course_name"`
	ClassYear    int     `db:"class_year" json:"class_year"`
	RoomCode     *string `db:"room_code" json:"room_code,omitempty"`
}

// RoomBooking is a room-bound exam as used for room availability checks.
type RoomBooking struct {
	ExamID     string `db:"exam_id" json:"exam_id"`
	CourseID   string `db:"course_id" json:"course_id"`
	CourseCode string `db:"course_code" json:"course_code"`
	RoomID     string `db:"room_id" json:"room_id"`
	RoomCode   string `db:"room_code" json:"room_code"`
	Start      string `db:"exam_start" json:"exam_start"`
}

// UnroomedExam is an exam without a room together with its seat demand.
type UnroomedExam struct {
	ExamID        string `db:"exam_id" json:"exam_id"`
	CourseID      string `db:"course_id" json:"course_id"`
	CourseCode    string `db:"course_code" json:"course_code"`
	ClassYear     int    `db:"class_year" json:"class_year"`
	Start         string `db:"exam_start" json:"exam_start"`
	RequiredSeats int    `db:"required_seats" json:"required_seats"`
}

// ExamUpdate carries a manual edit. Nil fields are left untouched.
type ExamUpdate struct {
	Start       *string
	RoomID      *string
	ClearRoom   bool
	DurationMin *int
	ExamType    *ExamType
}
