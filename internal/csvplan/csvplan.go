// Package csvplan runs the whole exam planning pipeline over plain CSV files
// without a database.
package csvplan

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Input file names expected in the data directory.
const (
	CoursesFile     = "courses.csv"
	EnrollmentsFile = "enrollments.csv"
	ClassroomsFile  = "classrooms.csv"
)

// CourseRow is one line of courses.csv.
type CourseRow struct {
	ID           string `csv:"id"`
	DepartmentID string `csv:"department_id"`
	Code         string `csv:"code"`
	Name         string `csv:"name"`
	ClassYear    int    `csv:"class_year"`
}

// EnrollmentRow is one line of enrollments.csv.
type EnrollmentRow struct {
	StudentID string `csv:"student_id"`
	CourseID  string `csv:"course_id"`
}

// ClassroomRow is one line of classrooms.csv. A zero capacity is derived from
// the desk grid; a positive capacity_override wins over both.
type ClassroomRow struct {
	ID               string `csv:"id"`
	DepartmentID     string `csv:"department_id"`
	Code             string `csv:"code"`
	Rows             int    `csv:"rows"`
	Cols             int    `csv:"cols"`
	SeatsPerDesk     int    `csv:"seats_per_desk"`
	Capacity         int    `csv:"capacity"`
	CapacityOverride int    `csv:"capacity_override"`
}

// EffectiveCapacity is the capacity the room assigner works with.
func (r ClassroomRow) EffectiveCapacity() int {
	switch {
	case r.CapacityOverride > 0:
		return r.CapacityOverride
	case r.Capacity > 0:
		return r.Capacity
	default:
		return r.Rows * r.Cols * r.SeatsPerDesk
	}
}

// Dataset is the decoded content of a data directory.
type Dataset struct {
	Courses     []CourseRow
	Enrollments []EnrollmentRow
	Classrooms  []ClassroomRow
}

// PlacementRow is one line of the exported schedule.
type PlacementRow struct {
	CourseCode string `csv:"course_code"`
	ClassYear  int    `csv:"class_year"`
	Start      string `csv:"start"`
	RoomCode   string `csv:"room_code"`
	Forced     bool   `csv:"forced"`
}

func init() {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.TrimLeadingSpace = true
		return r
	})
}

// LoadDir reads the three input files from dir.
func LoadDir(dir string) (*Dataset, error) {
	open := func(name string) (*os.File, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return f, nil
	}

	courses, err := open(CoursesFile)
	if err != nil {
		return nil, err
	}
	defer courses.Close()
	enrollments, err := open(EnrollmentsFile)
	if err != nil {
		return nil, err
	}
	defer enrollments.Close()
	classrooms, err := open(ClassroomsFile)
	if err != nil {
		return nil, err
	}
	defer classrooms.Close()

	return Decode(courses, enrollments, classrooms)
}

// Decode parses the three CSV streams.
func Decode(courses, enrollments, classrooms io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	if err := gocsv.Unmarshal(courses, &ds.Courses); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CoursesFile, err)
	}
	if err := gocsv.Unmarshal(enrollments, &ds.Enrollments); err != nil {
		return nil, fmt.Errorf("decode %s: %w", EnrollmentsFile, err)
	}
	if err := gocsv.Unmarshal(classrooms, &ds.Classrooms); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ClassroomsFile, err)
	}
	return ds, nil
}

// WritePlacements exports the schedule, one course per line, in start order.
func WritePlacements(w io.Writer, report *Report) error {
	rooms := make(map[string]string, len(report.Rooms.Assigned))
	for _, a := range report.Rooms.Assigned {
		rooms[a.ExamID] = a.RoomCode
	}
	rows := make([]PlacementRow, 0, len(report.Timetable))
	for _, p := range report.Timetable {
		rows = append(rows, PlacementRow{
			CourseCode: p.CourseCode,
			ClassYear:  p.ClassYear,
			Start:      p.Start,
			RoomCode:   rooms[p.CourseID],
			Forced:     p.Forced,
		})
	}
	return gocsv.Marshal(&rows, w)
}
