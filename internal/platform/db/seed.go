package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
)

// Seed provisions the default company and bootstrap accounts. Every step is
// idempotent so the seed can run on every startup.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	companyID, err := ensureCompany(ctx, pool, cfg.SeedCompanyName)
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, companyID, "Administrator", cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin); err != nil {
		return err
	}

	if cfg.SeedSuperAdminEmail != "" {
		if err := ensureUser(ctx, pool, "", "Platform Admin", cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword, auth.RoleSuperAdmin); err != nil {
			return err
		}
	}

	return nil
}

func ensureCompany(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE lower(name) = lower($1)", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	// The seeded company starts on the free plan so the bootstrap admin is
	// not blocked by the onboarding gate.
	err = pool.QueryRow(ctx, "INSERT INTO companies (name, plan) VALUES ($1, 'free') RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, companyID, fullName, email, password, role string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx,
		"INSERT INTO users (company_id, full_name, email, password_hash, role, status) VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, 'active') RETURNING id",
		companyID, fullName, email, hash, role).Scan(&id)
	if err != nil {
		return err
	}
	return nil
}
