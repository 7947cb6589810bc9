package leave

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

const requestColumns = `
    id, company_id, employee_id, type, start_date, end_date, days,
    half_day, COALESCE(half_day_type, ''), reason, status,
    COALESCE(reviewed_by::text, ''), reviewed_at, COALESCE(review_note, ''),
    created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var r Request
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.EmployeeID, &r.Type, &r.StartDate, &r.EndDate,
		&r.Days, &r.HalfDay, &r.HalfDayType, &r.Reason, &r.Status,
		&r.ReviewedBy, &r.ReviewedAt, &r.ReviewNote, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

// Create inserts a pending request. The exclusion constraint on the date
// range is the backstop against racing overlapping applications; its
// violation maps to ErrOverlap just like the pre-check.
func (s *Store) Create(ctx context.Context, r Request) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests
      (company_id, employee_id, type, start_date, end_date, days,
       half_day, half_day_type, reason)
    VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
    RETURNING `+requestColumns+`
  `, r.CompanyID, r.EmployeeID, r.Type, r.StartDate, r.EndDate, r.Days,
		r.HalfDay, r.HalfDayType, r.Reason)

	created, err := scanRequest(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return Request{}, ErrOverlap
		}
		return Request{}, err
	}
	return created, nil
}

// HasOverlap checks live requests (pending or approved) for an intersecting
// inclusive date range.
func (s *Store) HasOverlap(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE company_id = $1 AND employee_id = $2
      AND status IN ('pending', 'approved')
      AND start_date <= $4 AND end_date >= $3
  `, companyID, employeeID, start, end).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Get(ctx context.Context, companyID, requestID string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE company_id = $1 AND id = $2
  `, companyID, requestID)
	return scanRequest(row)
}

// SetStatus moves a pending request to a terminal status. The status
// predicate makes concurrent reviews race safely: exactly one wins, the rest
// get ErrInvalidTransition.
func (s *Store) SetStatus(ctx context.Context, companyID, requestID, status, reviewerUserID, note string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $3, reviewed_by = $4, reviewed_at = now(),
        review_note = NULLIF($5, ''), updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = 'pending'
    RETURNING `+requestColumns+`
  `, companyID, requestID, status, reviewerUserID, note)

	updated, err := scanRequest(row)
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing row from one already decided.
		if _, getErr := s.Get(ctx, companyID, requestID); getErr == nil {
			return Request{}, ErrInvalidTransition
		}
		return Request{}, ErrNotFound
	}
	return updated, err
}

// Cancel lets the owner withdraw their own pending request.
func (s *Store) Cancel(ctx context.Context, companyID, requestID, employeeID string) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = 'cancelled', updated_at = now()
    WHERE company_id = $1 AND id = $2 AND employee_id = $3 AND status = 'pending'
    RETURNING `+requestColumns+`
  `, companyID, requestID, employeeID)

	updated, err := scanRequest(row)
	if errors.Is(err, ErrNotFound) {
		existing, getErr := s.Get(ctx, companyID, requestID)
		if getErr != nil {
			return Request{}, ErrNotFound
		}
		if existing.EmployeeID != employeeID {
			return Request{}, ErrForbidden
		}
		return Request{}, ErrInvalidTransition
	}
	return updated, err
}

func (s *Store) List(ctx context.Context, companyID string, f ListFilter) ([]Request, int, error) {
	where := "WHERE company_id = $1"
	args := []any{companyID}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + requestColumns + " FROM leave_requests " + where +
		" ORDER BY created_at DESC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// PendingForEmployees lists undecided requests from the given employees,
// oldest first, for an approver's queue.
func (s *Store) PendingForEmployees(ctx context.Context, companyID string, employeeIDs []string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE company_id = $1 AND employee_id = ANY($2) AND status = 'pending'
    ORDER BY created_at
  `, companyID, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TeamCalendar returns approved absences intersecting the range for a set of
// employees, joined with their names.
func (s *Store) TeamCalendar(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) ([]CalendarEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT lr.employee_id, e.first_name || ' ' || e.last_name,
           lr.type, lr.start_date, lr.end_date, lr.days
    FROM leave_requests lr
    JOIN employees e ON e.id = lr.employee_id
    WHERE lr.company_id = $1 AND lr.employee_id = ANY($2)
      AND lr.status = 'approved'
      AND lr.start_date <= $4 AND lr.end_date >= $3
    ORDER BY lr.start_date
  `, companyID, employeeIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		if err := rows.Scan(&e.EmployeeID, &e.EmployeeName, &e.Type, &e.StartDate, &e.EndDate, &e.Days); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats sums approved leave per type for one employee's calendar year.
func (s *Store) Stats(ctx context.Context, companyID, employeeID string, year int) ([]TypeStat, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT type, COUNT(1), COALESCE(SUM(days), 0)
    FROM leave_requests
    WHERE company_id = $1 AND employee_id = $2
      AND status = 'approved'
      AND EXTRACT(YEAR FROM start_date) = $3
    GROUP BY type
    ORDER BY type
  `, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeStat
	for rows.Next() {
		var st TypeStat
		if err := rows.Scan(&st.Type, &st.Requests, &st.Days); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
