package company

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

const companyColumns = `id, name, COALESCE(domain, ''), COALESCE(size, ''), COALESCE(plan, ''), COALESCE(owner_user_id::text, ''), timezone, created_at`

func scanCompany(row pgx.Row) (Company, error) {
	var out Company
	err := row.Scan(&out.ID, &out.Name, &out.Domain, &out.Size, &out.Plan, &out.OwnerUserID, &out.Timezone, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrNotFound
	}
	return out, err
}

func (s *Store) Create(ctx context.Context, name, ownerUserID string) (Company, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO companies (name, owner_user_id)
    VALUES ($1, $2)
    RETURNING `+companyColumns, strings.TrimSpace(name), ownerUserID)
	out, err := scanCompany(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Company{}, ErrNameTaken
	}
	return out, err
}

func (s *Store) Get(ctx context.Context, companyID string) (Company, error) {
	return scanCompany(s.DB.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = $1", companyID))
}

func (s *Store) UpdateProfile(ctx context.Context, companyID, domain, size string) (Company, error) {
	return scanCompany(s.DB.QueryRow(ctx, `
    UPDATE companies
    SET domain = COALESCE(NULLIF($2, ''), domain),
        size = COALESCE(NULLIF($3, ''), size)
    WHERE id = $1
    RETURNING `+companyColumns, companyID, domain, size))
}

func (s *Store) SetPlan(ctx context.Context, companyID, plan, ownerUserID string) (Company, error) {
	return scanCompany(s.DB.QueryRow(ctx, `
    UPDATE companies
    SET plan = $2, owner_user_id = $3
    WHERE id = $1
    RETURNING `+companyColumns, companyID, plan, ownerUserID))
}

func (s *Store) SetTimezone(ctx context.Context, companyID, timezone string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE companies SET timezone = $2 WHERE id = $1", companyID, timezone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Timezone(ctx context.Context, companyID string) (string, error) {
	var tz string
	err := s.DB.QueryRow(ctx, "SELECT timezone FROM companies WHERE id = $1", companyID).Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return tz, err
}

func (s *Store) PlanSet(ctx context.Context, companyID string) (bool, error) {
	var plan string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(plan, '') FROM companies WHERE id = $1", companyID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return plan != "", err
}

// List is the registry view used by super-admins; it is the one query in the
// system that is deliberately not company-scoped.
func (s *Store) List(ctx context.Context, search string, limit, offset int) ([]Company, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = " WHERE name ILIKE $1 OR domain ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM companies"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + companyColumns + " FROM companies" + where + " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, company)
	}
	return out, total, rows.Err()
}
