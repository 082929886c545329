package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/csvplan"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"courses.csv":     "id,department_id,code,name,class_year\nc1,d1,CS101,Intro,1\nc2,d1,CS102,Logic,1\n",
		"enrollments.csv": "student_id,course_id\ns1,c1\ns1,c2\n",
		"classrooms.csv":  "id,department_id,code,rows,cols,seats_per_desk,capacity,capacity_override\nr1,d1,A-1,2,2,1,0,0\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestRunPrintsReport(t *testing.T) {
	dir := writeDataset(t)
	csvPath := filepath.Join(dir, "schedule.csv")

	var out bytes.Buffer
	err := run([]string{"-dir", dir, "-start", "2024-03-04", "-end", "2024-03-05", "-type", "final", "-csv", csvPath}, &out, zap.NewNop())
	require.NoError(t, err)

	var report struct {
		SlotPoolSize int `json:"slot_pool_size"`
		Schedule     struct {
			Placements []struct {
				CourseCode string `json:"course_code"`
				Start      string `json:"start"`
			} `json:"placements"`
			ForcedCount int `json:"forced_count"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 12, report.SlotPoolSize)
	require.Len(t, report.Schedule.Placements, 2)
	assert.NotEqual(t, report.Schedule.Placements[0].Start, report.Schedule.Placements[1].Start)

	written, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "course_code,class_year,start,room_code,forced")
}

func TestRunRejectsBadFlags(t *testing.T) {
	dir := writeDataset(t)

	err := run([]string{"-dir", dir, "-exclude", "someday"}, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)

	err = run([]string{"-dir", dir, "-start", "2024-03-04"}, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)

	err = run([]string{"-dir", filepath.Join(dir, "missing")}, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildOptions(t *testing.T) {
	opts, err := buildOptions("d1", "2024-03-04", "2024-03-08", "sat, sun", "c9,c10")
	require.NoError(t, err)
	assert.Equal(t, "d1", opts.DepartmentID)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, opts.Window.ExcludedWeekdays)
	assert.True(t, opts.Policy.Excludes("c10"))
	assert.False(t, opts.Policy.Excludes("c1"))

	_, err = buildOptions("d1", "", "", "sat", "")
	assert.Error(t, err)
}

type closeFailingWriter struct {
	bytes.Buffer
	closed bool
}

func (w *closeFailingWriter) Close() error {
	w.closed = true
	return errors.New("disk full")
}

func TestWritePlacementsReportsCloseError(t *testing.T) {
	w := &closeFailingWriter{}
	err := writePlacements(w, "schedule.csv", &csvplan.Report{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "close schedule.csv")
	assert.True(t, w.closed)
}
