package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const employeeColumns = `
    id, company_id,
    COALESCE(user_id::text, ''),
    employee_code, first_name, last_name, email,
    COALESCE(phone, ''),
    role,
    COALESCE(position, ''),
    COALESCE(department_id::text, ''),
    COALESCE(manager_id::text, ''),
    hire_date, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.EmployeeCode,
		&e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Role, &e.Position, &e.DepartmentID, &e.ManagerID,
		&e.HireDate, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

// resolveDepartment confirms the department exists in the caller's company.
// A bare foreign key would accept another company's department id; this check
// keeps the tenant boundary on the write path.
func resolveDepartment(ctx context.Context, tx pgx.Tx, companyID, departmentID string) error {
	var one int
	err := tx.QueryRow(ctx, `
    SELECT 1 FROM departments WHERE company_id = $1 AND id = $2
  `, companyID, departmentID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDepartmentNotFound
	}
	return err
}

// nextEmployeeCode allocates the next sequential code for the company.
// It must run inside the same transaction as the insert: the unique index on
// (company_id, employee_code) makes concurrent allocations fail cleanly
// instead of silently duplicating.
func nextEmployeeCode(ctx context.Context, tx pgx.Tx, companyID string) (string, error) {
	var next int
	err := tx.QueryRow(ctx, `
    SELECT COALESCE(MAX(NULLIF(regexp_replace(employee_code, '\D', '', 'g'), '')::int), 0) + 1
    FROM employees
    WHERE company_id = $1
  `, companyID).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP%04d", next), nil
}

func (s *Store) Create(ctx context.Context, e Employee) (Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, err
	}
	defer tx.Rollback(ctx)

	if err := resolveDepartment(ctx, tx, e.CompanyID, e.DepartmentID); err != nil {
		return Employee{}, err
	}

	code, err := nextEmployeeCode(ctx, tx, e.CompanyID)
	if err != nil {
		return Employee{}, err
	}

	row := tx.QueryRow(ctx, `
    INSERT INTO employees
      (company_id, user_id, employee_code, first_name, last_name, email,
       phone, role, position, department_id, manager_id, hire_date, status)
    VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, lower($6),
            NULLIF($7, ''), $8, NULLIF($9, ''), NULLIF($10, '')::uuid,
            NULLIF($11, '')::uuid, $12, $13)
    RETURNING `+employeeColumns+`
  `, e.CompanyID, e.UserID, code, e.FirstName, e.LastName, e.Email,
		e.Phone, e.Role, e.Position, e.DepartmentID, e.ManagerID, e.HireDate, e.Status)

	created, err := scanEmployee(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Employee{}, ErrEmailTaken
		}
		if isForeignKeyViolation(err) {
			return Employee{}, ErrDepartmentNotFound
		}
		return Employee{}, err
	}

	if created.DepartmentID != "" && created.Status == StatusActive {
		if err := adjustDepartmentCount(ctx, tx, created.CompanyID, created.DepartmentID, +1); err != nil {
			return Employee{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, companyID, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE company_id = $1 AND id = $2
  `, companyID, employeeID)
	return scanEmployee(row)
}

func (s *Store) GetByUserID(ctx context.Context, companyID, userID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE company_id = $1 AND user_id = $2
  `, companyID, userID)
	return scanEmployee(row)
}

// counted is true when the row participates in its department head count.
func counted(e Employee) bool {
	return e.DepartmentID != "" && e.Status == StatusActive
}

// Update persists the already-patched employee. Department counters move in
// the same transaction: the old slot is released before the new one is taken.
func (s *Store) Update(ctx context.Context, prev, e Employee) (Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, err
	}
	defer tx.Rollback(ctx)

	if e.DepartmentID != prev.DepartmentID {
		if err := resolveDepartment(ctx, tx, e.CompanyID, e.DepartmentID); err != nil {
			return Employee{}, err
		}
	}

	row := tx.QueryRow(ctx, `
    UPDATE employees
    SET first_name = $3, last_name = $4, email = lower($5),
        phone = NULLIF($6, ''),
        role = $7,
        position = NULLIF($8, ''),
        department_id = NULLIF($9, '')::uuid,
        manager_id = NULLIF($10, '')::uuid,
        hire_date = $11,
        status = $12,
        updated_at = now()
    WHERE company_id = $1 AND id = $2
    RETURNING `+employeeColumns+`
  `, e.CompanyID, e.ID, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Role, e.Position, e.DepartmentID, e.ManagerID, e.HireDate, e.Status)

	updated, err := scanEmployee(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Employee{}, ErrEmailTaken
		}
		if isForeignKeyViolation(err) {
			return Employee{}, ErrDepartmentNotFound
		}
		return Employee{}, err
	}

	if counted(prev) && (!counted(updated) || updated.DepartmentID != prev.DepartmentID) {
		if err := adjustDepartmentCount(ctx, tx, prev.CompanyID, prev.DepartmentID, -1); err != nil {
			return Employee{}, err
		}
	}
	if counted(updated) && (!counted(prev) || updated.DepartmentID != prev.DepartmentID) {
		if err := adjustDepartmentCount(ctx, tx, updated.CompanyID, updated.DepartmentID, +1); err != nil {
			return Employee{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, companyID, employeeID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
    DELETE FROM employees
    WHERE company_id = $1 AND id = $2
    RETURNING COALESCE(department_id::text, ''), status
  `, companyID, employeeID)

	var deptID, status string
	if err := row.Scan(&deptID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if deptID != "" && status == StatusActive {
		if err := adjustDepartmentCount(ctx, tx, companyID, deptID, -1); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) List(ctx context.Context, companyID string, f ListFilter) ([]Employee, int, error) {
	where := "WHERE company_id = $1"
	args := []any{companyID}
	if f.DepartmentID != "" {
		args = append(args, f.DepartmentID)
		where += fmt.Sprintf(" AND department_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.TrimSpace(f.Search)+"%")
		where += fmt.Sprintf(
			" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR employee_code ILIKE $%d)",
			len(args), len(args), len(args), len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + employeeColumns + " FROM employees " + where +
		" ORDER BY last_name, first_name" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Search is the lightweight typeahead lookup, capped by the caller.
func (s *Store) Search(ctx context.Context, companyID, q string, limit int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE company_id = $1
      AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2 OR employee_code ILIKE $2)
    ORDER BY last_name, first_name
    LIMIT $3
  `, companyID, "%"+strings.TrimSpace(q)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Reports(ctx context.Context, companyID, managerID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE company_id = $1 AND manager_id = $2
    ORDER BY last_name, first_name
  `, companyID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Members returns the department's active employees, unpaginated.
func (s *Store) Members(ctx context.Context, companyID, departmentID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE company_id = $1 AND department_id = $2 AND status = 'active'
    ORDER BY last_name, first_name
  `, companyID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func adjustDepartmentCount(ctx context.Context, tx pgx.Tx, companyID, departmentID string, delta int) error {
	tag, err := tx.Exec(ctx, `
    UPDATE departments
    SET employee_count = GREATEST(employee_count + $3, 0), updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, departmentID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
