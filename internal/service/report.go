package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"opensite/api/internal/store"
)

// ReportService builds downloadable xlsx workbooks from store data. All
// store reads run as the requesting actor, so permission and tenancy rules
// apply to exports too.
type ReportService struct {
	store *store.Store
}

// NewReportService creates a report service.
func NewReportService(s *store.Store) *ReportService {
	return &ReportService{store: s}
}

// TimesheetReport exports the timesheets visible to the actor as a workbook.
func (s *ReportService) TimesheetReport(actorID uint, filter store.TimesheetFilter) (*bytes.Buffer, error) {
	sheets, err := s.store.ListTimesheets(actorID, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timesheets"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Project", "User", "Clock In", "Clock Out", "Hours", "Status", "Trust Score", "Trust Reasons", "Rejection Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for row, ts := range sheets {
		clockOut := ""
		hours := ""
		if ts.ClockOut != nil {
			clockOut = ts.ClockOut.Format(time.RFC3339)
			hours = fmt.Sprintf("%.2f", ts.ClockOut.Sub(ts.ClockIn).Hours())
		}
		values := []interface{}{
			ts.ID,
			ts.ProjectID,
			ts.UserID,
			ts.ClockIn.Format(time.RFC3339),
			clockOut,
			hours,
			string(ts.Status),
			ts.TrustScore,
			formatReasons(ts.TrustReasons),
			ts.RejectionReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write timesheet report: %w", err)
	}
	return buf, nil
}

// AuditReport exports the audit log visible to the actor as a workbook.
func (s *ReportService) AuditReport(actorID uint, limit int) (*bytes.Buffer, error) {
	entries, err := s.store.AuditLog(actorID, limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Audit Log"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Time", "Actor", "Action", "Target Type", "Target ID", "Target Name", "Project ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for row, entry := range entries {
		targetType, targetName := "", ""
		var targetID interface{} = ""
		if entry.Target != nil {
			targetType = entry.Target.Type
			targetID = entry.Target.ID
			targetName = entry.Target.Name
		}
		var projectID interface{} = ""
		if entry.ProjectID != nil {
			projectID = *entry.ProjectID
		}
		values := []interface{}{
			entry.ID,
			entry.CreatedAt.Format(time.RFC3339),
			entry.ActorName,
			string(entry.Action),
			targetType,
			targetID,
			targetName,
			projectID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write audit report: %w", err)
	}
	return buf, nil
}

func formatReasons(reasons map[string]string) string {
	if len(reasons) == 0 {
		return ""
	}
	out := ""
	for k, v := range reasons {
		if out != "" {
			out += "; "
		}
		out += k + ": " + v
	}
	return out
}
