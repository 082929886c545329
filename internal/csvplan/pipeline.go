package csvplan

import (
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/exam-planner-api/internal/planner"
)

// ErrNoCourses is returned when the filters leave nothing to schedule.
var ErrNoCourses = errors.New("no courses left to schedule")

// Options configures one offline run.
type Options struct {
	DepartmentID string
	Window       planner.SlotPoolConfig
	Policy       planner.Policy
	Now          time.Time
}

// Report is the combined output of the pipeline.
type Report struct {
	DepartmentID string                       `json:"department_id,omitempty"`
	SlotPoolSize int                          `json:"slot_pool_size"`
	Schedule     planner.ScheduleResult       `json:"schedule"`
	Timetable    []planner.Placement          `json:"timetable"`
	Audit        planner.AuditReport          `json:"audit"`
	Rooms        planner.RoomAssignmentResult `json:"rooms"`
}

// Run schedules the dataset, audits the result and assigns rooms, entirely in
// memory. Exams take their course id as identifier.
func Run(ds *Dataset, opts Options) (*Report, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	slots, err := planner.GenerateSlotPool(opts.Window, opts.Now)
	if err != nil {
		return nil, err
	}

	courses := make([]planner.Course, 0, len(ds.Courses))
	for _, row := range ds.Courses {
		if opts.DepartmentID != "" && row.DepartmentID != opts.DepartmentID {
			continue
		}
		if opts.Policy.Excludes(row.ID) {
			continue
		}
		courses = append(courses, planner.Course{ID: row.ID, DepartmentID: row.DepartmentID, Code: row.Code, ClassYear: row.ClassYear})
	}
	if len(courses) == 0 {
		return nil, ErrNoCourses
	}

	enrollments := make(planner.EnrollmentSet)
	for _, row := range ds.Enrollments {
		enrollments.Add(row.CourseID, row.StudentID)
	}
	graph := planner.BuildConflictGraph(courses, enrollments)

	schedule, err := planner.Schedule(planner.ScheduleInput{
		Courses:     courses,
		Enrollments: enrollments,
		Graph:       graph,
		Slots:       slots,
		Policy:      opts.Policy,
	})
	if err != nil {
		return nil, err
	}
	timetable := chronological(schedule.Placements)

	records := make([]planner.ExamRecord, 0, len(timetable))
	pending := make([]planner.UnroomedExam, 0, len(timetable))
	for _, p := range timetable {
		records = append(records, planner.ExamRecord{ID: p.CourseID, CourseID: p.CourseID, CourseCode: p.CourseCode, ClassYear: p.ClassYear, Start: p.Start})
		pending = append(pending, planner.UnroomedExam{
			ExamID:        p.CourseID,
			CourseID:      p.CourseID,
			CourseCode:    p.CourseCode,
			ClassYear:     p.ClassYear,
			Start:         p.Start,
			RequiredSeats: enrollments.Size(p.CourseID),
		})
	}

	rooms := make([]planner.Room, 0, len(ds.Classrooms))
	for _, row := range ds.Classrooms {
		if opts.DepartmentID != "" && row.DepartmentID != opts.DepartmentID {
			continue
		}
		rooms = append(rooms, planner.Room{ID: row.ID, Code: row.Code, Capacity: row.EffectiveCapacity()})
	}
	assignment := planner.AssignRooms(rooms, pending, nil)

	// Audit after rooms are bound so room conflicts are visible too.
	roomOf := make(map[string]planner.RoomAssignment, len(assignment.Assigned))
	for _, a := range assignment.Assigned {
		roomOf[a.ExamID] = a
	}
	for i := range records {
		if a, ok := roomOf[records[i].ID]; ok {
			records[i].RoomID = a.RoomID
			records[i].RoomCode = a.RoomCode
		}
	}
	audit := planner.Audit(planner.AuditInput{Exams: records, Enrollments: enrollments})

	return &Report{
		DepartmentID: opts.DepartmentID,
		SlotPoolSize: len(slots),
		Schedule:     schedule,
		Timetable:    timetable,
		Audit:        audit,
		Rooms:        assignment,
	}, nil
}

// chronological returns a copy of placements ordered by start, then course code.
func chronological(placements []planner.Placement) []planner.Placement {
	out := append([]planner.Placement(nil), placements...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].CourseCode < out[j].CourseCode
	})
	return out
}
