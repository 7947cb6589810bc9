package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
    id, company_id, employee_id, day, check_in, check_out,
    status, is_late, is_early_departure, working_hours, overtime,
    COALESCE(notes, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.EmployeeID, &r.Day, &r.CheckIn, &r.CheckOut,
		&r.Status, &r.IsLate, &r.IsEarlyDeparture, &r.WorkingHours, &r.Overtime,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

// CreateCheckIn inserts the day's record. The unique index on
// (employee_id, day) turns a double check-in into ErrAlreadyCheckedIn, so two
// racing requests cannot both succeed.
func (s *Store) CreateCheckIn(ctx context.Context, r Record) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance
      (company_id, employee_id, day, check_in, status, is_late)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING `+recordColumns+`
  `, r.CompanyID, r.EmployeeID, r.Day, r.CheckIn, r.Status, r.IsLate)

	created, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, err
	}
	return created, nil
}

// CloseCheckIn stamps the check-out on today's open record. The predicate
// requiring an open check-in makes the update a no-op the second time, which
// surfaces as ErrNoOpenCheckIn.
func (s *Store) CloseCheckIn(ctx context.Context, companyID, employeeID string, day time.Time, checkOut time.Time, status string, workedHours, overtime float64, early bool) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE attendance
    SET check_out = $4, status = $5, working_hours = $6, overtime = $7,
        is_early_departure = $8, updated_at = now()
    WHERE company_id = $1 AND employee_id = $2 AND day = $3
      AND check_in IS NOT NULL AND check_out IS NULL
    RETURNING `+recordColumns+`
  `, companyID, employeeID, day, checkOut, status, workedHours, overtime, early)

	updated, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		return Record{}, ErrNoOpenCheckIn
	}
	return updated, err
}

func (s *Store) ForDay(ctx context.Context, companyID, employeeID string, day time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance
    WHERE company_id = $1 AND employee_id = $2 AND day = $3
  `, companyID, employeeID, day)
	return scanRecord(row)
}

// Upsert is the manual marking path: it overwrites whatever the day already
// holds for the employee.
func (s *Store) Upsert(ctx context.Context, r Record) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance
      (company_id, employee_id, day, check_in, check_out, status, is_late,
       is_early_departure, working_hours, overtime, notes)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
    ON CONFLICT (employee_id, day) DO UPDATE
    SET check_in = EXCLUDED.check_in,
        check_out = EXCLUDED.check_out,
        status = EXCLUDED.status,
        is_late = EXCLUDED.is_late,
        is_early_departure = EXCLUDED.is_early_departure,
        working_hours = EXCLUDED.working_hours,
        overtime = EXCLUDED.overtime,
        notes = EXCLUDED.notes,
        updated_at = now()
    RETURNING `+recordColumns+`
  `, r.CompanyID, r.EmployeeID, r.Day, r.CheckIn, r.CheckOut, r.Status,
		r.IsLate, r.IsEarlyDeparture, r.WorkingHours, r.Overtime, r.Notes)
	return scanRecord(row)
}

func (s *Store) ListByEmployee(ctx context.Context, companyID, employeeID string, f ListFilter) ([]Record, int, error) {
	where := "WHERE company_id = $1 AND employee_id = $2"
	args := []any{companyID, employeeID}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recordColumns + " FROM attendance " + where +
		" ORDER BY day DESC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// ForEmployeesOnDay returns the day's records keyed by employee for the
// department snapshot.
func (s *Store) ForEmployeesOnDay(ctx context.Context, companyID string, employeeIDs []string, day time.Time) (map[string]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+`
    FROM attendance
    WHERE company_id = $1 AND employee_id = ANY($2) AND day = $3
  `, companyID, employeeIDs, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Record, len(employeeIDs))
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out[r.EmployeeID] = r
	}
	return out, rows.Err()
}

func (s *Store) SummaryRange(ctx context.Context, companyID, employeeID string, from, to time.Time) (Summary, error) {
	var sum Summary
	err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1) FILTER (WHERE status = 'present'),
      COUNT(1) FILTER (WHERE status = 'absent'),
      COUNT(1) FILTER (WHERE status = 'half-day'),
      COUNT(1) FILTER (WHERE status = 'on-leave'),
      COUNT(1) FILTER (WHERE status = 'holiday'),
      COUNT(1) FILTER (WHERE is_late),
      COALESCE(SUM(working_hours), 0),
      COALESCE(SUM(overtime), 0)
    FROM attendance
    WHERE company_id = $1 AND employee_id = $2 AND day BETWEEN $3 AND $4
  `, companyID, employeeID, from, to).Scan(
		&sum.PresentDays, &sum.AbsentDays, &sum.HalfDays, &sum.LeaveDays,
		&sum.HolidayDays, &sum.LateArrivals, &sum.TotalHours, &sum.Overtime,
	)
	if err != nil {
		return Summary{}, err
	}
	sum.EmployeeID = employeeID
	sum.From = from.Format("2006-01-02")
	sum.To = to.Format("2006-01-02")
	return sum, nil
}
