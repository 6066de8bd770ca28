package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/teamtrack/internal/analytics"
	"github.com/sadopc/teamtrack/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Intervals  []jsonEntry `json:"intervals"`
}

type jsonEntry struct {
	ID          int64   `json:"id"`
	User        string  `json:"user"`
	Project     string  `json:"project"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time,omitempty"`
	DurationSec int64   `json:"duration_seconds"`
	Hours       float64 `json:"hours"`
	Note        string  `json:"note,omitempty"`
}

// IntervalsToJSON writes raw work intervals with resolved user and project
// names.
func IntervalsToJSON(intervals []store.WorkInterval, users map[int64]*store.User, projects map[int64]*store.Project, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(intervals),
	}

	for _, iv := range intervals {
		endStr := ""
		if iv.EndTime != nil {
			endStr = iv.EndTime.UTC().Format(time.RFC3339)
		}
		durSec := int64(iv.Duration().Seconds())

		export.Intervals = append(export.Intervals, jsonEntry{
			ID:          iv.ID,
			User:        lookupUser(users, iv.UserID),
			Project:     lookupProject(projects, iv.ProjectID),
			StartTime:   iv.StartTime.UTC().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: durSec,
			Hours:       iv.Duration().Hours(),
			Note:        iv.Note,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// SummaryToJSON writes a computed summary report as-is; the report structs
// carry their own JSON shape.
func SummaryToJSON(rep *analytics.SummaryReport, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}

func lookupUser(users map[int64]*store.User, id *int64) string {
	if id != nil {
		if u, ok := users[*id]; ok {
			return u.Name
		}
	}
	return "Unknown"
}

func lookupProject(projects map[int64]*store.Project, id *int64) string {
	if id != nil {
		if p, ok := projects[*id]; ok {
			return p.Name
		}
	}
	return "Unknown"
}
