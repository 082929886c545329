package planner

import (
	"sort"
)

const sampleLimit = 5

// ExamRecord is a persisted exam as seen by the auditor.
type ExamRecord struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	ClassYear  int    `json:"class_year"`
	Start      string `json:"start"`
	RoomID     string `json:"room_id,omitempty"`
	RoomCode   string `json:"room_code,omitempty"`
}

// StudentInfo identifies a student in conflict reports.
type StudentInfo struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	FullName string `json:"full_name"`
}

// AuditInput is the persisted state an audit runs over. Exams are the exams
// in scope; RoomBookings are room-bound exams from every department.
type AuditInput struct {
	Exams        []ExamRecord
	RoomBookings []ExamRecord
	Enrollments  EnrollmentSet
	Students     map[string]StudentInfo
}

// StudentConflict is a student sitting two exams at the same slot. CourseA
// sorts before CourseB.
type StudentConflict struct {
	Student StudentInfo `json:"student"`
	CourseA string      `json:"course_a"`
	CourseB string      `json:"course_b"`
	Slot    string      `json:"slot"`
}

// RoomConflict is a room booked by more than one exam at the same slot.
type RoomConflict struct {
	RoomID      string   `json:"room_id"`
	RoomCode    string   `json:"room_code"`
	Slot        string   `json:"slot"`
	CourseCodes []string `json:"course_codes"`
}

// SlotCount is one bucket of the per-slot student conflict histogram.
type SlotCount struct {
	Slot  string `json:"slot"`
	Count int    `json:"count"`
}

// AuditReport summarises all conflicts found.
type AuditReport struct {
	Total                 int               `json:"total"`
	StudentConflictCount  int               `json:"student_conflict_count"`
	RoomConflictCount     int               `json:"room_conflict_count"`
	PerSlot               []SlotCount       `json:"per_slot"`
	StudentConflicts      []StudentConflict `json:"student_conflicts"`
	RoomConflicts         []RoomConflict    `json:"room_conflicts"`
	StudentConflictSample []StudentConflict `json:"student_conflict_sample"`
	RoomConflictSample    []RoomConflict    `json:"room_conflict_sample"`
}

// Audit re-derives student and room conflicts from persisted exams. Two exams
// share a slot only when their start text is identical.
func Audit(in AuditInput) AuditReport {
	students := auditStudentConflicts(in)
	rooms := auditRoomConflicts(in)

	perSlot := make([]SlotCount, 0)
	for _, c := range students {
		if n := len(perSlot); n > 0 && perSlot[n-1].Slot == c.Slot {
			perSlot[n-1].Count++
			continue
		}
		perSlot = append(perSlot, SlotCount{Slot: c.Slot, Count: 1})
	}

	return AuditReport{
		Total:                 len(students) + len(rooms),
		StudentConflictCount:  len(students),
		RoomConflictCount:     len(rooms),
		PerSlot:               perSlot,
		StudentConflicts:      students,
		RoomConflicts:         rooms,
		StudentConflictSample: students[:min(len(students), sampleLimit)],
		RoomConflictSample:    rooms[:min(len(rooms), sampleLimit)],
	}
}

func auditStudentConflicts(in AuditInput) []StudentConflict {
	bySlot := make(map[string][]ExamRecord)
	for _, e := range in.Exams {
		if e.Start == "" {
			continue
		}
		bySlot[e.Start] = append(bySlot[e.Start], e)
	}

	conflicts := make([]StudentConflict, 0)
	for slot, exams := range bySlot {
		sort.Slice(exams, func(i, j int) bool { return lessExam(exams[i], exams[j]) })
		for i := 0; i < len(exams); i++ {
			for j := i + 1; j < len(exams); j++ {
				a, b := exams[i], exams[j]
				if a.CourseID == b.CourseID {
					continue
				}
				for _, sid := range in.Enrollments.Intersection(a.CourseID, b.CourseID) {
					info, ok := in.Students[sid]
					if !ok {
						info = StudentInfo{ID: sid}
					}
					conflicts = append(conflicts, StudentConflict{Student: info, CourseA: a.CourseCode, CourseB: b.CourseCode, Slot: slot})
				}
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		if a.Student.Number != b.Student.Number {
			return a.Student.Number < b.Student.Number
		}
		if a.Student.ID != b.Student.ID {
			return a.Student.ID < b.Student.ID
		}
		if a.CourseA != b.CourseA {
			return a.CourseA < b.CourseA
		}
		return a.CourseB < b.CourseB
	})
	return conflicts
}

func auditRoomConflicts(in AuditInput) []RoomConflict {
	inScope := make(map[string]struct{}, len(in.Exams))
	seen := make(map[string]struct{})
	type roomSlot struct{ room, slot string }
	groups := make(map[roomSlot][]ExamRecord)
	codes := make(map[string]string)

	add := func(e ExamRecord) {
		if e.RoomID == "" || e.Start == "" {
			return
		}
		if _, dup := seen[e.ID]; dup {
			return
		}
		seen[e.ID] = struct{}{}
		key := roomSlot{room: e.RoomID, slot: e.Start}
		groups[key] = append(groups[key], e)
		if e.RoomCode != "" {
			codes[e.RoomID] = e.RoomCode
		}
	}
	for _, e := range in.Exams {
		inScope[e.ID] = struct{}{}
		add(e)
	}
	for _, e := range in.RoomBookings {
		add(e)
	}

	conflicts := make([]RoomConflict, 0)
	for key, exams := range groups {
		if len(exams) < 2 {
			continue
		}
		touchesScope := false
		courseCodes := make([]string, 0, len(exams))
		for _, e := range exams {
			if _, ok := inScope[e.ID]; ok {
				touchesScope = true
			}
			courseCodes = append(courseCodes, e.CourseCode)
		}
		if !touchesScope {
			continue
		}
		sort.Strings(courseCodes)
		conflicts = append(conflicts, RoomConflict{RoomID: key.room, RoomCode: codes[key.room], Slot: key.slot, CourseCodes: courseCodes})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Slot != conflicts[j].Slot {
			return conflicts[i].Slot < conflicts[j].Slot
		}
		if conflicts[i].RoomCode != conflicts[j].RoomCode {
			return conflicts[i].RoomCode < conflicts[j].RoomCode
		}
		return conflicts[i].RoomID < conflicts[j].RoomID
	})
	return conflicts
}

func lessExam(a, b ExamRecord) bool {
	if a.CourseCode != b.CourseCode {
		return a.CourseCode < b.CourseCode
	}
	if a.CourseID != b.CourseID {
		return a.CourseID < b.CourseID
	}
	return a.ID < b.ID
}
