// Command examplan runs the exam planning pipeline over CSV files and prints
// the combined report as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/csvplan"
	"github.com/noah-isme/exam-planner-api/internal/planner"
)

func main() {
	logr, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(os.Args[1:], os.Stdout, logr); err != nil {
		logr.Sugar().Errorw("exam planning failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logr *zap.Logger) error {
	fs := flag.NewFlagSet("examplan", flag.ContinueOnError)
	var (
		dir        = fs.String("dir", ".", "directory holding courses.csv, enrollments.csv and classrooms.csv")
		department = fs.String("department", "", "only plan courses and rooms of this department")
		start      = fs.String("start", "", "first exam day (YYYY-MM-DD)")
		end        = fs.String("end", "", "last exam day (YYYY-MM-DD)")
		exclude    = fs.String("exclude", "", "comma separated weekdays to skip")
		skip       = fs.String("skip-courses", "", "comma separated course ids to leave out")
		cooldown   = fs.Int("cooldown", 15, "minutes a student rests between exams")
		single     = fs.Bool("single", false, "allow only one exam per slot")
		examType   = fs.String("type", string(planner.ExamTypeMidterm), "exam type: MIDTERM, FINAL or MAKEUP")
		duration   = fs.Int("duration", 75, "exam duration in minutes")
		csvOut     = fs.String("csv", "", "also write the schedule as CSV to this path")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := buildOptions(*department, *start, *end, *exclude, *skip)
	if err != nil {
		return err
	}
	opts.Policy.CooldownMinutes = *cooldown
	opts.Policy.SingleExamAtATime = *single
	opts.Policy.ExamType = planner.ParseExamType(*examType)
	opts.Policy.DurationMinutes = *duration

	ds, err := csvplan.LoadDir(*dir)
	if err != nil {
		return err
	}
	report, err := csvplan.Run(ds, opts)
	if err != nil {
		return err
	}

	logr.Sugar().Infow("exam plan ready",
		"courses", len(report.Schedule.Placements),
		"slots", report.SlotPoolSize,
		"forced", report.Schedule.ForcedCount,
		"conflicts", report.Audit.Total,
		"unroomed", report.Rooms.UnassignedCount,
	)
	if report.Schedule.ForcedCount > 0 {
		logr.Sugar().Warnw("forced exam placements", "courses", report.Schedule.ForcedCourseCodes())
	}

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", *csvOut, err)
		}
		if err := writePlacements(f, *csvOut, report); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func buildOptions(department, start, end, exclude, skip string) (csvplan.Options, error) {
	opts := csvplan.Options{DepartmentID: department, Policy: planner.DefaultPolicy(), Now: time.Now()}
	if start != "" {
		t, err := planner.ParseDate(start)
		if err != nil {
			return opts, err
		}
		opts.Window.DateStart = &t
	}
	if end != "" {
		t, err := planner.ParseDate(end)
		if err != nil {
			return opts, err
		}
		opts.Window.DateEnd = &t
	}
	weekdays := splitList(exclude)
	if len(weekdays) > 0 && start == "" && end == "" {
		return opts, errors.New("-exclude needs -start and -end")
	}
	for _, raw := range weekdays {
		day, err := planner.ParseWeekday(raw)
		if err != nil {
			return opts, err
		}
		opts.Window.ExcludedWeekdays = append(opts.Window.ExcludedWeekdays, day)
	}
	for _, id := range splitList(skip) {
		opts.Policy.ExcludedCourses[id] = struct{}{}
	}
	return opts, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// writePlacements writes the CSV export and closes w. A failed close is
// reported since the file may be incomplete.
func writePlacements(w io.WriteCloser, name string, report *csvplan.Report) error {
	if err := csvplan.WritePlacements(w, report); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
