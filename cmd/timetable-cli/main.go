package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/dataload"
	"github.com/edusched/timetable-api/internal/engine"
	"github.com/edusched/timetable-api/internal/models"
	"github.com/edusched/timetable-api/pkg/export"
)

func main() {
	var (
		dataDir      string
		outDir       string
		maxGroupSize int
		iterations   int
		dailyLimit   int
		priorities   string
		phase        string
		format       string
		timeout      time.Duration
		verbose      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "Directory with the input CSV files")
	flag.StringVar(&outDir, "out", "out", "Directory for generated artifacts")
	flag.IntVar(&maxGroupSize, "max-group-size", 60, "Maximum practice group size")
	flag.IntVar(&iterations, "iterations", 1000, "Optimizer iteration budget")
	flag.IntVar(&dailyLimit, "elective-daily-limit", 2, "Maximum practice lessons per group per day")
	flag.StringVar(&priorities, "priority-subjects", "Mathematics,Russian Language", "Comma-separated subjects preferring mid-morning slots")
	flag.StringVar(&phase, "phase", "optimize", "Stop after phase: groups, place or optimize")
	flag.StringVar(&format, "format", "", "Optional extra export: csv or pdf")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Run timeout")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	logr := zap.NewNop()
	if verbose {
		var err error
		if logr, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
	}
	defer logr.Sync() //nolint:errcheck

	loader := dataload.NewLoader(nil, logr)
	model, err := loader.Load(dataDir)
	if err != nil {
		log.Fatalf("failed to load input data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := engine.Config{
		MaxGroupSize:       maxGroupSize,
		MaxIterations:      iterations,
		ElectiveDailyLimit: dailyLimit,
		PrioritySubjects:   splitPriorities(priorities),
	}
	session := engine.NewSession(model, cfg, logr)

	stopAfter, err := parsePhase(phase)
	if err != nil {
		log.Fatalf("invalid phase: %v", err)
	}

	start := time.Now()
	result, err := session.RunUntil(ctx, stopAfter)
	if err != nil {
		log.Fatalf("scheduling failed: %v", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := writeJSON(filepath.Join(outDir, "groups.json"), result.Groups); err != nil {
		log.Fatalf("failed to write groups: %v", err)
	}
	if err := writeJSON(filepath.Join(outDir, "report.json"), result.Report); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	if stopAfter > engine.PhaseGroups {
		if err := writeJSON(filepath.Join(outDir, "schedule.json"), result.Lessons); err != nil {
			log.Fatalf("failed to write schedule: %v", err)
		}
	}
	if format != "" && stopAfter > engine.PhaseGroups {
		if err := writeExport(outDir, format, model, result.Lessons); err != nil {
			log.Fatalf("failed to write export: %v", err)
		}
	}

	fmt.Printf("Scheduled %d lessons in %s\n", len(result.Lessons), time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Practice groups: %d (%d split)\n", len(result.Groups), result.Report.SplitGroups)
	fmt.Printf("  Gaps: %d -> %d (%d swaps over %d iterations)\n",
		result.Report.InitialGaps, result.Report.FinalGaps, result.Report.AcceptedSwaps, result.Report.OptimizerIterations)
	if len(result.Report.Warnings) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Report.Warnings))
		for _, w := range result.Report.Warnings {
			fmt.Printf("    [%s] %s\n", w.Kind, w.Message)
		}
	}
	if result.Report.UnplacedLessons > 0 {
		os.Exit(1)
	}
}

func parsePhase(raw string) (engine.Phase, error) {
	switch raw {
	case "groups":
		return engine.PhaseGroups, nil
	case "place":
		return engine.PhasePlace, nil
	case "optimize", "":
		return engine.PhaseOptimize, nil
	default:
		return 0, fmt.Errorf("unknown phase %q, expected groups, place or optimize", raw)
	}
}

func splitPriorities(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeExport(outDir, format string, model *models.DomainModel, lessons []*models.Lesson) error {
	rows := make([]models.TimetableLesson, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, models.TimetableLesson{
			Day:             l.Day,
			LessonNumber:    l.LessonNumber,
			Subject:         l.Subject,
			TeacherID:       l.TeacherID,
			ClassGroupID:    l.ClassOrGroupID,
			ClassroomID:     l.ClassroomID,
			IsPracticeGroup: l.IsPracticeGroup,
		})
	}

	switch format {
	case "csv":
		payload, err := export.NewCSVExporter().Render(export.TimetableDataset(rows))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, "schedule.csv"), payload, 0o644); err != nil {
			return err
		}
		for _, class := range model.Classes {
			grid := export.ClassGridDataset(class.ID, rows, models.LessonsPerDay)
			payload, err := export.NewCSVExporter().Render(grid)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("grid-%s.csv", class.ID)
			if err := os.WriteFile(filepath.Join(outDir, name), payload, 0o644); err != nil {
				return err
			}
		}
		return nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(export.TimetableDataset(rows), "Weekly Timetable")
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(outDir, "schedule.pdf"), payload, 0o644)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
