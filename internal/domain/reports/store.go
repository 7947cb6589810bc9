package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeCounts(ctx context.Context, companyID string) (total, active int, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COUNT(1) FILTER (WHERE status = 'active')
    FROM employees
    WHERE company_id = $1
  `, companyID).Scan(&total, &active)
	return
}

func (s *Store) DepartmentCount(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM departments WHERE company_id = $1
  `, companyID).Scan(&count)
	return count, err
}

func (s *Store) PendingLeaveCount(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leave_requests
    WHERE company_id = $1 AND status = 'pending'
  `, companyID).Scan(&count)
	return count, err
}

func (s *Store) PresentToday(ctx context.Context, companyID string, day time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM attendance
    WHERE company_id = $1 AND day = $2 AND status IN ('present', 'half-day')
  `, companyID, day).Scan(&count)
	return count, err
}

func (s *Store) OnLeaveToday(ctx context.Context, companyID string, day time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leave_requests
    WHERE company_id = $1 AND status = 'approved'
      AND start_date <= $2 AND end_date >= $2
  `, companyID, day).Scan(&count)
	return count, err
}

// AttendanceRows feeds the attendance export: one row per employee over the
// range, with their aggregated counters.
type AttendanceRow struct {
	EmployeeCode string
	EmployeeName string
	PresentDays  int
	AbsentDays   int
	HalfDays     int
	LateArrivals int
	TotalHours   float64
	Overtime     float64
}

func (s *Store) AttendanceRows(ctx context.Context, companyID string, from, to time.Time) ([]AttendanceRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.employee_code, e.first_name || ' ' || e.last_name,
      COUNT(a.id) FILTER (WHERE a.status = 'present'),
      COUNT(a.id) FILTER (WHERE a.status = 'absent'),
      COUNT(a.id) FILTER (WHERE a.status = 'half-day'),
      COUNT(a.id) FILTER (WHERE a.is_late),
      COALESCE(SUM(a.working_hours), 0),
      COALESCE(SUM(a.overtime), 0)
    FROM employees e
    LEFT JOIN attendance a
      ON a.employee_id = e.id AND a.day BETWEEN $2 AND $3
    WHERE e.company_id = $1 AND e.status = 'active'
    GROUP BY e.id, e.employee_code, e.first_name, e.last_name
    ORDER BY e.employee_code
  `, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceRow
	for rows.Next() {
		var r AttendanceRow
		if err := rows.Scan(&r.EmployeeCode, &r.EmployeeName, &r.PresentDays, &r.AbsentDays,
			&r.HalfDays, &r.LateArrivals, &r.TotalHours, &r.Overtime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LeaveRow is one decided or pending request in the leave export.
type LeaveRow struct {
	EmployeeCode string
	EmployeeName string
	Type         string
	StartDate    time.Time
	EndDate      time.Time
	Days         float64
	Status       string
}

func (s *Store) LeaveRows(ctx context.Context, companyID string, from, to time.Time) ([]LeaveRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.employee_code, e.first_name || ' ' || e.last_name,
           lr.type, lr.start_date, lr.end_date, lr.days, lr.status
    FROM leave_requests lr
    JOIN employees e ON e.id = lr.employee_id
    WHERE lr.company_id = $1 AND lr.start_date <= $3 AND lr.end_date >= $2
    ORDER BY lr.start_date, e.employee_code
  `, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRow
	for rows.Next() {
		var r LeaveRow
		if err := rows.Scan(&r.EmployeeCode, &r.EmployeeName, &r.Type, &r.StartDate,
			&r.EndDate, &r.Days, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
