package leave

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/directory"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier delivers best-effort notifications. Implementations must never
// fail the calling operation.
type Notifier interface {
	Notify(ctx context.Context, companyID, userID, kind, title, message string)
}

type Service struct {
	Store     *Store
	Directory *directory.Service
	Notifier  Notifier
}

func NewService(store *Store, dir *directory.Service, notifier Notifier) *Service {
	return &Service{Store: store, Directory: dir, Notifier: notifier}
}

type ApplyInput struct {
	Type        string `json:"type"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	HalfDay     bool   `json:"halfDay"`
	HalfDayType string `json:"halfDayType"`
	Reason      string `json:"reason"`
}

// Apply files a new pending request for the calling user's employee profile.
func (s *Service) Apply(ctx context.Context, actor auth.Actor, in ApplyInput) (Request, error) {
	emp, err := s.Directory.GetByUserID(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return Request{}, err
	}
	if !ValidType(in.Type) {
		return Request{}, fmt.Errorf("%w: unknown leave type %q", ErrValidation, in.Type)
	}
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrValidation)
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrValidation)
	}
	if in.HalfDay {
		if in.HalfDayType != HalfDayFirst && in.HalfDayType != HalfDaySecond {
			return Request{}, fmt.Errorf("%w: half-day leave needs a half-day type", ErrValidation)
		}
	} else {
		in.HalfDayType = ""
	}
	if strings.TrimSpace(in.Reason) == "" {
		return Request{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	days, err := ComputeDays(start, end, in.HalfDay)
	if err != nil {
		return Request{}, err
	}

	// Pre-check for a friendly error; the database constraint still guards
	// the race between two in-flight applications.
	overlap, err := s.Store.HasOverlap(ctx, actor.CompanyID, emp.ID, start, end)
	if err != nil {
		return Request{}, err
	}
	if overlap {
		return Request{}, ErrOverlap
	}

	created, err := s.Store.Create(ctx, Request{
		CompanyID:   actor.CompanyID,
		EmployeeID:  emp.ID,
		Type:        in.Type,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		HalfDay:     in.HalfDay,
		HalfDayType: in.HalfDayType,
		Reason:      strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return Request{}, err
	}

	if s.Notifier != nil && emp.ManagerID != "" {
		if mgr, err := s.Directory.Get(ctx, actor.CompanyID, emp.ManagerID); err == nil && mgr.UserID != "" {
			s.Notifier.Notify(ctx, actor.CompanyID, mgr.UserID, "leave-request",
				"New leave request",
				fmt.Sprintf("%s requested %s leave from %s to %s",
					emp.FullName(), created.Type,
					created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02")))
		}
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, requestID string) (Request, error) {
	req, err := s.Store.Get(ctx, actor.CompanyID, requestID)
	if err != nil {
		return Request{}, err
	}
	if d := auth.Authorize(actor, auth.ActionRead, s.target(ctx, req)); !d.Allowed {
		return Request{}, ErrForbidden
	}
	return req, nil
}

// Decide approves or rejects a pending request. A rejection must carry a
// note so the employee learns why.
func (s *Service) Decide(ctx context.Context, actor auth.Actor, requestID, status, note string) (Request, error) {
	var action auth.Action
	switch status {
	case StatusApproved:
		action = auth.ActionApprove
	case StatusRejected:
		action = auth.ActionReject
		if strings.TrimSpace(note) == "" {
			return Request{}, fmt.Errorf("%w: rejection requires a note", ErrValidation)
		}
	default:
		return Request{}, fmt.Errorf("%w: unknown decision %q", ErrValidation, status)
	}

	req, err := s.Store.Get(ctx, actor.CompanyID, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := Transition(req.Status, status); err != nil {
		return Request{}, err
	}
	if d := auth.Authorize(actor, action, s.target(ctx, req)); !d.Allowed {
		return Request{}, ErrForbidden
	}

	decided, err := s.Store.SetStatus(ctx, actor.CompanyID, requestID, status, actor.UserID, note)
	if err != nil {
		return Request{}, err
	}
	s.notifyOwner(ctx, decided, status, note)
	return decided, nil
}

// Cancel withdraws the caller's own pending request.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, requestID string) (Request, error) {
	req, err := s.Store.Get(ctx, actor.CompanyID, requestID)
	if err != nil {
		return Request{}, err
	}
	if d := auth.Authorize(actor, auth.ActionCancel, s.target(ctx, req)); !d.Allowed {
		if req.Status != StatusPending && req.EmployeeID == actor.EmployeeID {
			return Request{}, ErrInvalidTransition
		}
		return Request{}, ErrForbidden
	}
	cancelled, err := s.Store.Cancel(ctx, actor.CompanyID, requestID, actor.EmployeeID)
	if err != nil {
		return Request{}, err
	}
	s.notifyManager(ctx, cancelled)
	return cancelled, nil
}

func (s *Service) Mine(ctx context.Context, actor auth.Actor, f ListFilter) ([]Request, int, error) {
	emp, err := s.Directory.GetByUserID(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	f.EmployeeID = emp.ID
	return s.List(ctx, actor.CompanyID, f)
}

func (s *Service) List(ctx context.Context, companyID string, f ListFilter) ([]Request, int, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Store.List(ctx, companyID, f)
}

// PendingApprovals is the approver's queue: department members for a
// manager, the whole company for privileged roles.
func (s *Service) PendingApprovals(ctx context.Context, actor auth.Actor) ([]Request, error) {
	if auth.Privileged(actor.Role) {
		reqs, _, err := s.List(ctx, actor.CompanyID, ListFilter{Status: StatusPending, Limit: maxPageSize})
		return reqs, err
	}
	if actor.Role != auth.RoleManager || actor.DepartmentID == "" {
		return []Request{}, nil
	}
	members, err := s.Directory.Members(ctx, actor.CompanyID, actor.DepartmentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return []Request{}, nil
	}
	return s.Store.PendingForEmployees(ctx, actor.CompanyID, ids)
}

func (s *Service) TeamCalendar(ctx context.Context, companyID, departmentID string, from, to time.Time) ([]CalendarEntry, error) {
	members, err := s.Directory.Members(ctx, companyID, departmentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return []CalendarEntry{}, nil
	}
	return s.Store.TeamCalendar(ctx, companyID, ids, from, to)
}

func (s *Service) Stats(ctx context.Context, companyID, employeeID string, year int) ([]TypeStat, error) {
	return s.Store.Stats(ctx, companyID, employeeID, year)
}

// target builds the authorization target for a request, resolving the
// owner's department when it is cheap to do so.
func (s *Service) target(ctx context.Context, req Request) auth.Target {
	t := auth.Target{
		Kind:            auth.TargetLeave,
		CompanyID:       req.CompanyID,
		OwnerEmployeeID: req.EmployeeID,
		LeaveStatus:     req.Status,
	}
	if owner, err := s.Directory.Get(ctx, req.CompanyID, req.EmployeeID); err == nil {
		t.DepartmentID = owner.DepartmentID
	}
	return t
}

func (s *Service) notifyOwner(ctx context.Context, req Request, status, note string) {
	if s.Notifier == nil {
		return
	}
	owner, err := s.Directory.Get(ctx, req.CompanyID, req.EmployeeID)
	if err != nil || owner.UserID == "" {
		return
	}
	msg := fmt.Sprintf("Your %s leave from %s to %s was %s",
		req.Type, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), status)
	if note != "" {
		msg += ": " + note
	}
	s.Notifier.Notify(ctx, req.CompanyID, owner.UserID, "leave-"+status, "Leave request "+status, msg)
}

func (s *Service) notifyManager(ctx context.Context, req Request) {
	if s.Notifier == nil {
		return
	}
	owner, err := s.Directory.Get(ctx, req.CompanyID, req.EmployeeID)
	if err != nil || owner.ManagerID == "" {
		return
	}
	mgr, err := s.Directory.Get(ctx, req.CompanyID, owner.ManagerID)
	if err != nil || mgr.UserID == "" {
		return
	}
	s.Notifier.Notify(ctx, req.CompanyID, mgr.UserID, "leave-cancelled",
		"Leave request cancelled",
		fmt.Sprintf("%s cancelled their %s leave from %s to %s",
			owner.FullName(), req.Type,
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")))
}
