package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const departmentColumns = `
    id, company_id, name,
    COALESCE(description, ''),
    COALESCE(head_id::text, ''),
    employee_count, created_at, updated_at`

func scanDepartment(row rowScanner) (Department, error) {
	var d Department
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Name, &d.Description,
		&d.HeadID, &d.EmployeeCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return d, err
}

func (s *Store) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO departments (company_id, name, description, head_id)
    VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, '')::uuid)
    RETURNING `+departmentColumns+`
  `, d.CompanyID, d.Name, d.Description, d.HeadID)

	created, err := scanDepartment(row)
	if err != nil && isUniqueViolation(err) {
		return Department{}, ErrDepartmentTaken
	}
	return created, err
}

func (s *Store) GetDepartment(ctx context.Context, companyID, departmentID string) (Department, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+departmentColumns+`
    FROM departments
    WHERE company_id = $1 AND id = $2
  `, companyID, departmentID)
	return scanDepartment(row)
}

func (s *Store) ListDepartments(ctx context.Context, companyID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+departmentColumns+`
    FROM departments
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDepartment(ctx context.Context, d Department) (Department, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE departments
    SET name = $3, description = NULLIF($4, ''), head_id = NULLIF($5, '')::uuid,
        updated_at = now()
    WHERE company_id = $1 AND id = $2
    RETURNING `+departmentColumns+`
  `, d.CompanyID, d.ID, d.Name, d.Description, d.HeadID)

	updated, err := scanDepartment(row)
	if err != nil && isUniqueViolation(err) {
		return Department{}, ErrDepartmentTaken
	}
	return updated, err
}

// DeleteDepartment refuses to remove a department that still has members;
// callers reassign employees first.
func (s *Store) DeleteDepartment(ctx context.Context, companyID, departmentID string) error {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees
    WHERE company_id = $1 AND department_id = $2
  `, companyID, departmentID).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDepartmentNotEmpty
	}
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM departments
    WHERE company_id = $1 AND id = $2
  `, companyID, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
