package planner

import (
	"sort"
	"time"
)

// Placement phases.
const (
	PhaseSpread   = 1
	PhaseFirstFit = 2
	PhaseForced   = 3
)

const defaultDurationMinutes = 75

// Policy holds the knobs of one scheduling run. It is passed by value and
// never mutated by the scheduler.
type Policy struct {
	CooldownMinutes   int
	SingleExamAtATime bool
	ExcludedCourses   map[string]struct{}
	ExamType          ExamType
	DurationMinutes   int
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		CooldownMinutes: 15,
		ExcludedCourses: map[string]struct{}{},
		ExamType:        ExamTypeMidterm,
		DurationMinutes: defaultDurationMinutes,
	}
}

// Excludes reports whether courseID is removed from the programme.
func (p Policy) Excludes(courseID string) bool {
	_, ok := p.ExcludedCourses[courseID]
	return ok
}

// ScheduleInput bundles everything a run needs. Graph is built from Courses
// and Enrollments when nil.
type ScheduleInput struct {
	Courses     []Course
	Enrollments EnrollmentSet
	Graph       *ConflictGraph
	Slots       []time.Time
	Policy      Policy
}

// Placement is the slot chosen for one course.
type Placement struct {
	CourseID   string    `json:"course_id"`
	CourseCode string    `json:"course_code"`
	ClassYear  int       `json:"class_year"`
	Slot       time.Time `json:"-"`
	Start      string    `json:"start"`
	Phase      int       `json:"phase"`
	Forced     bool      `json:"forced"`
}

// PhaseCounts tallies placements per phase.
type PhaseCounts struct {
	Spread   int `json:"spread"`
	FirstFit int `json:"first_fit"`
	Forced   int `json:"forced"`
}

// ScheduleResult is the outcome of a run. Placements follow processing order.
type ScheduleResult struct {
	Placements  []Placement `json:"placements"`
	ForcedCount int         `json:"forced_count"`
	PhaseCounts PhaseCounts `json:"phase_counts"`
	EdgeCount   int         `json:"edge_count"`
}

// ForcedCourseCodes lists the codes of courses placed in phase 3.
func (r ScheduleResult) ForcedCourseCodes() []string {
	var codes []string
	for _, p := range r.Placements {
		if p.Forced {
			codes = append(codes, p.CourseCode)
		}
	}
	return codes
}

// Schedule assigns one slot to every course not excluded by the policy. It
// never fails for infeasibility: when no slot passes the checks the course is
// forced into the last slot of the pool and reported as forced.
func Schedule(in ScheduleInput) (ScheduleResult, error) {
	courses := make([]Course, 0, len(in.Courses))
	for _, c := range in.Courses {
		if !in.Policy.Excludes(c.ID) {
			courses = append(courses, c)
		}
	}
	if len(courses) == 0 {
		return ScheduleResult{Placements: []Placement{}}, nil
	}
	if len(in.Slots) == 0 {
		return ScheduleResult{}, ErrEmptySlotPool
	}

	enrollments := in.Enrollments
	if enrollments == nil {
		enrollments = EnrollmentSet{}
	}
	graph := in.Graph
	if graph == nil {
		graph = BuildConflictGraph(courses, enrollments)
	}

	order := processingOrder(courses, enrollments, graph)
	state := newSchedulerState(in.Policy, enrollments, graph)

	result := ScheduleResult{Placements: make([]Placement, 0, len(order)), EdgeCount: graph.EdgeCount()}
	for _, course := range order {
		slot, phase := state.choose(course, in.Slots)
		state.place(course, slot)

		result.Placements = append(result.Placements, Placement{
			CourseID:   course.ID,
			CourseCode: course.Code,
			ClassYear:  course.ClassYear,
			Slot:       slot,
			Start:      FormatSlot(slot),
			Phase:      phase,
			Forced:     phase == PhaseForced,
		})
		switch phase {
		case PhaseSpread:
			result.PhaseCounts.Spread++
		case PhaseFirstFit:
			result.PhaseCounts.FirstFit++
		default:
			result.PhaseCounts.Forced++
			result.ForcedCount++
		}
	}
	return result, nil
}

// processingOrder sorts by enrollment size desc, conflict degree desc, then
// course code and id ascending.
func processingOrder(courses []Course, enrollments EnrollmentSet, graph *ConflictGraph) []Course {
	order := append([]Course(nil), courses...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if sa, sb := enrollments.Size(a.ID), enrollments.Size(b.ID); sa != sb {
			return sa > sb
		}
		if da, db := graph.Degree(a.ID), graph.Degree(b.ID); da != db {
			return da > db
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ID < b.ID
	})
	return order
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{year: y, month: m, day: d}
}

type schedulerState struct {
	policy      Policy
	enrollments EnrollmentSet
	graph       *ConflictGraph

	placed      map[string]time.Time
	slotCourses map[time.Time][]string
	lastExam    map[string]time.Time
	daysByYear  map[int]map[dayKey]struct{}
}

func newSchedulerState(policy Policy, enrollments EnrollmentSet, graph *ConflictGraph) *schedulerState {
	return &schedulerState{
		policy:      policy,
		enrollments: enrollments,
		graph:       graph,
		placed:      make(map[string]time.Time),
		slotCourses: make(map[time.Time][]string),
		lastExam:    make(map[string]time.Time),
		daysByYear:  make(map[int]map[dayKey]struct{}),
	}
}

func (s *schedulerState) choose(course Course, slots []time.Time) (time.Time, int) {
	forbidden := make(map[time.Time]struct{})
	for nb := range s.graph.Adjacency[course.ID] {
		if t, ok := s.placed[nb]; ok {
			forbidden[t] = struct{}{}
		}
	}

	// A class year of zero means unknown and skips day spreading.
	if course.ClassYear != 0 {
		used := s.daysByYear[course.ClassYear]
		for _, slot := range slots {
			if !s.canPlace(course, slot, forbidden) {
				continue
			}
			if _, taken := used[dayOf(slot)]; !taken {
				return slot, PhaseSpread
			}
		}
	}

	for _, slot := range slots {
		if s.canPlace(course, slot, forbidden) {
			return slot, PhaseFirstFit
		}
	}

	return slots[len(slots)-1], PhaseForced
}

func (s *schedulerState) canPlace(course Course, slot time.Time, forbidden map[time.Time]struct{}) bool {
	if _, ok := forbidden[slot]; ok {
		return false
	}
	occupants := s.slotCourses[slot]
	if s.policy.SingleExamAtATime && len(occupants) > 0 {
		return false
	}
	for _, other := range occupants {
		if s.enrollments.Shared(course.ID, other) {
			return false
		}
	}
	if s.policy.CooldownMinutes > 0 {
		cooldown := time.Duration(s.policy.CooldownMinutes) * time.Minute
		for studentID := range s.enrollments[course.ID] {
			last, ok := s.lastExam[studentID]
			if !ok {
				continue
			}
			diff := slot.Sub(last)
			if diff < 0 {
				diff = -diff
			}
			if diff < cooldown {
				return false
			}
		}
	}
	return true
}

func (s *schedulerState) place(course Course, slot time.Time) {
	s.placed[course.ID] = slot
	s.slotCourses[slot] = append(s.slotCourses[slot], course.ID)
	// Only the most recent exam per student is kept.
	for studentID := range s.enrollments[course.ID] {
		s.lastExam[studentID] = slot
	}
	if course.ClassYear != 0 {
		days, ok := s.daysByYear[course.ClassYear]
		if !ok {
			days = make(map[dayKey]struct{})
			s.daysByYear[course.ClassYear] = days
		}
		days[dayOf(slot)] = struct{}{}
	}
}
