package planner

import "sort"

// FailureReason classifies why an exam stayed without a room.
type FailureReason string

const (
	FailureNoRoom   FailureReason = "no_room"
	FailureCapacity FailureReason = "capacity"
)

// Room is a bookable classroom with its effective capacity.
type Room struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Capacity int    `json:"capacity"`
}

// UnroomedExam is an exam waiting for a room.
type UnroomedExam struct {
	ExamID        string `json:"exam_id"`
	CourseID      string `json:"course_id"`
	CourseCode    string `json:"course_code"`
	ClassYear     int    `json:"class_year"`
	Start         string `json:"start"`
	RequiredSeats int    `json:"required_seats"`
}

// RoomBooking marks a room as taken at a slot.
type RoomBooking struct {
	RoomID string `json:"room_id"`
	Start  string `json:"start"`
}

// RoomAssignment binds an exam to a room.
type RoomAssignment struct {
	ExamID        string `json:"exam_id"`
	CourseCode    string `json:"course_code"`
	Start         string `json:"start"`
	RoomID        string `json:"room_id"`
	RoomCode      string `json:"room_code"`
	RequiredSeats int    `json:"required_seats"`
	Capacity      int    `json:"capacity"`
}

// RoomFailure records an exam that could not be roomed.
type RoomFailure struct {
	Reason               FailureReason `json:"reason"`
	ExamID               string        `json:"exam_id"`
	CourseCode           string        `json:"course_code"`
	Start                string        `json:"start"`
	RequiredSeats        int           `json:"required_seats"`
	MaxAvailableCapacity int           `json:"max_available_capacity,omitempty"`
}

// RoomAssignmentResult reports bindings and both failure lists.
type RoomAssignmentResult struct {
	Assigned        []RoomAssignment `json:"assigned"`
	NoRoom          []RoomFailure    `json:"no_room"`
	Capacity        []RoomFailure    `json:"capacity"`
	NoRoomSample    []RoomFailure    `json:"no_room_sample"`
	CapacitySample  []RoomFailure    `json:"capacity_sample"`
	AssignedCount   int              `json:"assigned_count"`
	NoRoomCount     int              `json:"no_room_count"`
	CapacityCount   int              `json:"capacity_count"`
	UnassignedCount int              `json:"unassigned_count"`
}

// AssignRooms binds the tightest free room to each exam in (start, class year,
// course code) order. bookings should contain every room-bound exam across all
// departments; bindings made here are added to it as the run proceeds.
func AssignRooms(rooms []Room, exams []UnroomedExam, bookings []RoomBooking) RoomAssignmentResult {
	sortedRooms := append([]Room(nil), rooms...)
	sort.SliceStable(sortedRooms, func(i, j int) bool {
		if sortedRooms[i].Capacity != sortedRooms[j].Capacity {
			return sortedRooms[i].Capacity > sortedRooms[j].Capacity
		}
		return sortedRooms[i].Code < sortedRooms[j].Code
	})

	queue := append([]UnroomedExam(nil), exams...)
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.ClassYear != b.ClassYear {
			return a.ClassYear < b.ClassYear
		}
		if a.CourseCode != b.CourseCode {
			return a.CourseCode < b.CourseCode
		}
		return a.ExamID < b.ExamID
	})

	used := make(map[string]map[string]struct{})
	markUsed := func(start, roomID string) {
		rooms, ok := used[start]
		if !ok {
			rooms = make(map[string]struct{})
			used[start] = rooms
		}
		rooms[roomID] = struct{}{}
	}
	for _, b := range bookings {
		if b.RoomID != "" && b.Start != "" {
			markUsed(b.Start, b.RoomID)
		}
	}

	result := RoomAssignmentResult{
		Assigned: make([]RoomAssignment, 0),
		NoRoom:   make([]RoomFailure, 0),
		Capacity: make([]RoomFailure, 0),
	}

	for _, exam := range queue {
		var candidates []Room
		for _, r := range sortedRooms {
			if _, busy := used[exam.Start][r.ID]; !busy {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) == 0 {
			result.NoRoom = append(result.NoRoom, RoomFailure{
				Reason:        FailureNoRoom,
				ExamID:        exam.ExamID,
				CourseCode:    exam.CourseCode,
				Start:         exam.Start,
				RequiredSeats: exam.RequiredSeats,
			})
			continue
		}

		var feasible []Room
		maxCapacity := 0
		for _, r := range candidates {
			if r.Capacity > maxCapacity {
				maxCapacity = r.Capacity
			}
			if r.Capacity >= exam.RequiredSeats {
				feasible = append(feasible, r)
			}
		}
		if len(feasible) == 0 {
			result.Capacity = append(result.Capacity, RoomFailure{
				Reason:               FailureCapacity,
				ExamID:               exam.ExamID,
				CourseCode:           exam.CourseCode,
				Start:                exam.Start,
				RequiredSeats:        exam.RequiredSeats,
				MaxAvailableCapacity: maxCapacity,
			})
			continue
		}

		// Ties on capacity go to the lowest room code.
		best := feasible[0]
		for _, r := range feasible[1:] {
			if r.Capacity < best.Capacity {
				best = r
			}
		}

		markUsed(exam.Start, best.ID)
		result.Assigned = append(result.Assigned, RoomAssignment{
			ExamID:        exam.ExamID,
			CourseCode:    exam.CourseCode,
			Start:         exam.Start,
			RoomID:        best.ID,
			RoomCode:      best.Code,
			RequiredSeats: exam.RequiredSeats,
			Capacity:      best.Capacity,
		})
	}

	result.AssignedCount = len(result.Assigned)
	result.NoRoomCount = len(result.NoRoom)
	result.CapacityCount = len(result.Capacity)
	result.UnassignedCount = result.NoRoomCount + result.CapacityCount
	result.NoRoomSample = result.NoRoom[:min(len(result.NoRoom), sampleLimit)]
	result.CapacitySample = result.Capacity[:min(len(result.Capacity), sampleLimit)]
	return result
}
