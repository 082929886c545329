package models

import "time"

// SystemMetrics is a JSON snapshot of planner instrumentation.
type SystemMetrics struct {
	ScheduleRuns             uint64    `json:"schedule_runs"`
	ForcedPlacements         uint64    `json:"forced_placements"`
	RoomAssignmentRuns       uint64    `json:"room_assignment_runs"`
	RoomAssignmentFailures   uint64    `json:"room_assignment_failures"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
