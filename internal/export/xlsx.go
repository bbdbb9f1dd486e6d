// Package export renders stored learning data as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/progress"
)

// Sheet names in the exported workbook.
const (
	SheetPlans = "Plans"
	SheetSteps = "Steps"
	SheetLog   = "Log"
)

var (
	planHeader = []interface{}{"Plan ID", "Topic", "Level", "Time", "Motivation", "Created", "Updated", "Steps", "Completed", "Percent", "Active"}
	stepHeader = []interface{}{"Plan ID", "Day", "Step ID", "Title", "Type", "Duration", "URL", "Completed"}
	logHeader  = []interface{}{"Entry ID", "Title", "Body", "Created", "Updated"}
)

const timeLayout = "2006-01-02 15:04"

// WriteXLSX writes blob as a workbook with one sheet each for plans, steps
// and log entries. Rows are ordered most recently updated first.
func WriteXLSX(w io.Writer, blob model.Blob) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPlans); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	for _, name := range []string{SheetSteps, SheetLog} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: add sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}

	plans := sortedPlans(blob)
	active := blob.ActiveID()

	var planRows, stepRows [][]interface{}
	for _, rec := range plans {
		p := progress.PlanProgress(rec.Plan)
		planRows = append(planRows, []interface{}{
			rec.ID, rec.Plan.Topic, string(rec.UserProfile.Level), string(rec.UserProfile.TimeCommitment),
			rec.UserProfile.Motivation, stamp(rec.CreatedAt), stamp(rec.UpdatedAt),
			p.Total, p.Completed, p.Percent, yesNo(rec.ID == active),
		})
		for _, act := range progress.Flatten(rec.Plan) {
			s := act.Step
			stepRows = append(stepRows, []interface{}{
				rec.ID, act.DayTitle, s.ID, s.Title, string(s.Type), s.Duration, s.URL, yesNo(s.Completed),
			})
		}
	}

	var logRows [][]interface{}
	for _, e := range sortedLog(blob) {
		logRows = append(logRows, []interface{}{e.ID, e.Title, e.Body, stamp(e.CreatedAt), stamp(e.UpdatedAt)})
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetPlans, planHeader, planRows},
		{SheetSteps, stepHeader, stepRows},
		{SheetLog, logHeader, logRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.header, sh.rows, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("export: %s header: %w", name, err)
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("export: %s header style: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %s row %d: %w", name, i+2, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", name, i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("export: %s columns: %w", name, err)
	}
	return f.SetColWidth(name, "A", last, 18)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}

func sortedPlans(blob model.Blob) []model.PlanRecord {
	out := make([]model.PlanRecord, 0, len(blob.Plans))
	for _, rec := range blob.Plans {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sortedLog(blob model.Blob) []model.LogEntry {
	out := make([]model.LogEntry, 0, len(blob.LogEntries))
	for _, e := range blob.LogEntries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}
