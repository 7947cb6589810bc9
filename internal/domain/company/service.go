package company

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Create(ctx context.Context, name, ownerUserID string) (Company, error) {
	return s.Store.Create(ctx, name, ownerUserID)
}

func (s *Service) Get(ctx context.Context, companyID string) (Company, error) {
	return s.Store.Get(ctx, companyID)
}

func (s *Service) UpdateProfile(ctx context.Context, companyID, domain, size string) (Company, error) {
	return s.Store.UpdateProfile(ctx, companyID, domain, size)
}

// ChoosePlan completes onboarding: it validates the plan and records the
// caller as company owner, unlocking the main application for its users.
func (s *Service) ChoosePlan(ctx context.Context, companyID, plan, ownerUserID string) (Company, error) {
	if !ValidPlan(plan) {
		return Company{}, ErrInvalidPlan
	}
	return s.Store.SetPlan(ctx, companyID, plan, ownerUserID)
}

func (s *Service) SetTimezone(ctx context.Context, companyID, timezone string) error {
	if _, err := time.LoadLocation(strings.TrimSpace(timezone)); err != nil {
		return ErrInvalidTimezone
	}
	return s.Store.SetTimezone(ctx, companyID, strings.TrimSpace(timezone))
}

// Location resolves the company timezone, falling back to UTC when the stored
// name no longer resolves on the host.
func (s *Service) Location(ctx context.Context, companyID string) (*time.Location, error) {
	tz, err := s.Store.Timezone(ctx, companyID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, nil
	}
	return loc, nil
}

func (s *Service) Onboarded(ctx context.Context, companyID string) (bool, error) {
	return s.Store.PlanSet(ctx, companyID)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Company, int, error) {
	return s.Store.List(ctx, search, limit, offset)
}
