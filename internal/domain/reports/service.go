package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Dashboard is the landing-page counter block.
type Dashboard struct {
	TotalEmployees  int `json:"totalEmployees"`
	ActiveEmployees int `json:"activeEmployees"`
	Departments     int `json:"departments"`
	PendingLeave    int `json:"pendingLeave"`
	PresentToday    int `json:"presentToday"`
	OnLeaveToday    int `json:"onLeaveToday"`
}

func (s *Service) Dashboard(ctx context.Context, companyID string, today time.Time) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.TotalEmployees, d.ActiveEmployees, err = s.Store.EmployeeCounts(ctx, companyID); err != nil {
		return Dashboard{}, err
	}
	if d.Departments, err = s.Store.DepartmentCount(ctx, companyID); err != nil {
		return Dashboard{}, err
	}
	if d.PendingLeave, err = s.Store.PendingLeaveCount(ctx, companyID); err != nil {
		return Dashboard{}, err
	}
	if d.PresentToday, err = s.Store.PresentToday(ctx, companyID, today); err != nil {
		return Dashboard{}, err
	}
	if d.OnLeaveToday, err = s.Store.OnLeaveToday(ctx, companyID, today); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// AttendancePDF renders the per-employee attendance summary for the range.
func (s *Service) AttendancePDF(ctx context.Context, companyID, companyName string, from, to time.Time) ([]byte, error) {
	rows, err := s.Store.AttendanceRows(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Attendance Summary")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, companyName)
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(10)

	widths := []float64{25, 70, 22, 22, 22, 22, 28, 28}
	headers := []string{"Code", "Employee", "Present", "Absent", "Half Days", "Late", "Hours", "Overtime"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		cells := []string{
			r.EmployeeCode, r.EmployeeName,
			strconv.Itoa(r.PresentDays), strconv.Itoa(r.AbsentDays),
			strconv.Itoa(r.HalfDays), strconv.Itoa(r.LateArrivals),
			fmt.Sprintf("%.2f", r.TotalHours), fmt.Sprintf("%.2f", r.Overtime),
		}
		for i, c := range cells {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LeaveCSV writes the leave register for the range as CSV.
func (s *Service) LeaveCSV(ctx context.Context, companyID string, from, to time.Time) ([]byte, error) {
	rows, err := s.Store.LeaveRows(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"employee_code", "employee_name", "type", "start_date", "end_date", "days", "status"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.EmployeeCode, r.EmployeeName, r.Type,
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			strconv.FormatFloat(r.Days, 'f', -1, 64), r.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
