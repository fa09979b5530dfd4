package report

import (
	"fmt"
	"io"
	"sort"

	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/utils"
	"github.com/xuri/excelize/v2"
)

const (
	LeaveSheet   = "Leave Requests"
	SummarySheet = "Summary"
)

var leaveHeaders = []string{"ID", "Type", "Start", "End", "Days", "Status", "Reason", "Submitted"}

// LeaveWorkbook lays out leave requests as one row each, plus a per-status
// summary sheet.
func LeaveWorkbook(items []common.LeaveRequestDTO) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", LeaveSheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeRow(f, LeaveSheet, 1, toAny(leaveHeaders)); err != nil {
		f.Close()
		return nil, err
	}
	for i, item := range items {
		row := []any{
			item.ID,
			item.LeaveType,
			item.StartDate,
			item.EndDate,
			days(item),
			item.Status,
			item.Reason,
			item.CreatedAt,
		}
		if err := writeRow(f, LeaveSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetRowStyle(LeaveSheet, 1, 1, header); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(LeaveSheet, "G", "G", 40); err != nil {
		f.Close()
		return nil, err
	}

	if err := summary(f, items, header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func summary(f *excelize.File, items []common.LeaveRequestDTO, header int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeRow(f, SummarySheet, 1, []any{"Status", "Requests", "Days"}); err != nil {
		return err
	}

	groups := utils.GroupBy(items, func(item common.LeaveRequestDTO) string { return item.Status })
	statuses := make([]string, 0, len(groups))
	for status := range groups {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	for i, status := range statuses {
		total := 0
		for _, item := range groups[status] {
			total += days(item)
		}
		if err := writeRow(f, SummarySheet, i+2, []any{status, len(groups[status]), total}); err != nil {
			return err
		}
	}
	return f.SetRowStyle(SummarySheet, 1, 1, header)
}

// WriteLeaveReport writes the workbook as xlsx.
func WriteLeaveReport(w io.Writer, items []common.LeaveRequestDTO) error {
	f, err := LeaveWorkbook(items)
	if err != nil {
		return fmt.Errorf("build leave report: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write leave report: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// days counts calendar days, inclusive. Unparseable dates count as zero.
func days(item common.LeaveRequestDTO) int {
	start, err := utils.ParseDate(item.StartDate)
	if err != nil {
		return 0
	}
	end, err := utils.ParseDate(item.EndDate)
	if err != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func toAny(values []string) []any {
	return utils.Map(values, func(v string) any { return v })
}
