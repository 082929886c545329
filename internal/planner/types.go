// Package planner holds the exam timetabling engine: conflict graph
// construction, slot pool generation, greedy slot assignment, conflict
// auditing, room assignment and seat layout. Everything here is a pure
// function of its inputs; persistence lives in the service layer.
package planner

import (
	"errors"
	"strings"
)

var (
	// ErrEmptySlotPool is returned when there is no slot to place exams in.
	ErrEmptySlotPool = errors.New("slot pool is empty")
	// ErrInvalidWindow is returned for a half-open or inverted date window.
	ErrInvalidWindow = errors.New("invalid date window")
	// ErrInvalidSlot is returned when a timestamp is not in YYYY-MM-DD HH:MM form.
	ErrInvalidSlot = errors.New("invalid slot timestamp")
	// ErrInvalidGrid is returned when a seat grid has a non-positive dimension.
	ErrInvalidGrid = errors.New("invalid seat grid")
)

// ExamType enumerates the kinds of exam a run can produce.
type ExamType string

const (
	ExamTypeMidterm ExamType = "MIDTERM"
	ExamTypeFinal   ExamType = "FINAL"
	ExamTypeMakeup  ExamType = "MAKEUP"
)

// ParseExamType normalises raw into a known ExamType. Unknown values fall
// back to ExamTypeMidterm.
func ParseExamType(raw string) ExamType {
	switch ExamType(strings.ToUpper(strings.TrimSpace(raw))) {
	case ExamTypeFinal:
		return ExamTypeFinal
	case ExamTypeMakeup:
		return ExamTypeMakeup
	default:
		return ExamTypeMidterm
	}
}

// Course is the scheduling view of a course.
type Course struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Code         string `json:"code"`
	ClassYear    int    `json:"class_year"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// EnrollmentSet maps a course id to the ids of its enrolled students.
type EnrollmentSet map[string]map[string]struct{}

// NewEnrollmentSet groups enrollment pairs by course. Duplicate pairs collapse.
func NewEnrollmentSet(pairs []Enrollment) EnrollmentSet {
	set := make(EnrollmentSet)
	for _, p := range pairs {
		set.Add(p.CourseID, p.StudentID)
	}
	return set
}

// Add records studentID as enrolled in courseID.
func (s EnrollmentSet) Add(courseID, studentID string) {
	students, ok := s[courseID]
	if !ok {
		students = make(map[string]struct{})
		s[courseID] = students
	}
	students[studentID] = struct{}{}
}

// Size returns the number of students enrolled in courseID.
func (s EnrollmentSet) Size(courseID string) int {
	return len(s[courseID])
}

// Shared reports whether the two courses have at least one common student.
func (s EnrollmentSet) Shared(a, b string) bool {
	return len(s.Intersection(a, b)) > 0
}

// Intersection returns the students enrolled in both courses.
func (s EnrollmentSet) Intersection(a, b string) []string {
	sa, sb := s[a], s[b]
	if len(sa) > len(sb) {
		sa, sb = sb, sa
	}
	var out []string
	for id := range sa {
		if _, ok := sb[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
