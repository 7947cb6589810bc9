package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hrms/internal/domain/auth"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	searchCap       = 10
)

// Notifier delivers in-app notifications. Optional; a nil Notifier disables
// them.
type Notifier interface {
	Notify(ctx context.Context, companyID, userID, kind, title, message string)
}

type Service struct {
	Store    *Store
	Notifier Notifier
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type CreateInput struct {
	UserID       string     `json:"userId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	Position     string     `json:"position"`
	DepartmentID string     `json:"departmentId"`
	ManagerID    string     `json:"managerId"`
	HireDate     *time.Time `json:"hireDate"`
	Status       string     `json:"status"`
}

// AdminPatch is the privileged update shape. Nil fields are left untouched.
type AdminPatch struct {
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Position     *string    `json:"position"`
	DepartmentID *string    `json:"departmentId"`
	ManagerID    *string    `json:"managerId"`
	HireDate     *time.Time `json:"hireDate"`
	Status       *string    `json:"status"`
}

// SelfPatch is what an employee may change on their own record.
type SelfPatch struct {
	Phone *string `json:"phone"`
}

func (s *Service) Create(ctx context.Context, companyID string, in CreateInput) (Employee, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" {
		return Employee{}, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return Employee{}, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if in.DepartmentID == "" {
		return Employee{}, fmt.Errorf("%w: department is required", ErrValidation)
	}
	if in.Role == "" {
		in.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(in.Role) {
		return Employee{}, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if !ValidStatus(in.Status) {
		return Employee{}, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}
	created, err := s.Store.Create(ctx, Employee{
		CompanyID:    companyID,
		UserID:       in.UserID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		Position:     in.Position,
		DepartmentID: in.DepartmentID,
		ManagerID:    in.ManagerID,
		HireDate:     in.HireDate,
		Status:       in.Status,
	})
	if err != nil {
		return Employee{}, err
	}
	if s.Notifier != nil && created.UserID != "" {
		s.Notifier.Notify(ctx, companyID, created.UserID, "employee-created",
			"Welcome aboard",
			fmt.Sprintf("Your employee profile %s has been created", created.EmployeeCode))
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, companyID, employeeID string, patch AdminPatch) (Employee, error) {
	prev, err := s.Store.Get(ctx, companyID, employeeID)
	if err != nil {
		return Employee{}, err
	}
	next := prev
	if patch.FirstName != nil {
		next.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		next.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		next.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Phone != nil {
		next.Phone = *patch.Phone
	}
	if patch.Position != nil {
		next.Position = *patch.Position
	}
	if patch.DepartmentID != nil {
		next.DepartmentID = *patch.DepartmentID
	}
	if patch.ManagerID != nil {
		next.ManagerID = *patch.ManagerID
	}
	if patch.HireDate != nil {
		next.HireDate = patch.HireDate
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if next.FirstName == "" || next.LastName == "" {
		return Employee{}, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if !strings.Contains(next.Email, "@") {
		return Employee{}, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if !ValidStatus(next.Status) {
		return Employee{}, fmt.Errorf("%w: unknown status %q", ErrValidation, next.Status)
	}
	if next.DepartmentID == "" {
		return Employee{}, fmt.Errorf("%w: department is required", ErrValidation)
	}
	if next.ManagerID == next.ID {
		return Employee{}, fmt.Errorf("%w: employee cannot manage themselves", ErrValidation)
	}
	return s.Store.Update(ctx, prev, next)
}

// UpdateSelf applies the limited self-service patch to the record linked to
// the calling user.
func (s *Service) UpdateSelf(ctx context.Context, companyID, userID string, patch SelfPatch) (Employee, error) {
	prev, err := s.Store.GetByUserID(ctx, companyID, userID)
	if err != nil {
		return Employee{}, err
	}
	next := prev
	if patch.Phone != nil {
		next.Phone = strings.TrimSpace(*patch.Phone)
	}
	return s.Store.Update(ctx, prev, next)
}

func (s *Service) Delete(ctx context.Context, companyID, employeeID string) error {
	return s.Store.Delete(ctx, companyID, employeeID)
}

func (s *Service) Get(ctx context.Context, companyID, employeeID string) (Employee, error) {
	return s.Store.Get(ctx, companyID, employeeID)
}

func (s *Service) GetByUserID(ctx context.Context, companyID, userID string) (Employee, error) {
	return s.Store.GetByUserID(ctx, companyID, userID)
}

func (s *Service) List(ctx context.Context, companyID string, f ListFilter) ([]Employee, int, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	return s.Store.List(ctx, companyID, f)
}

// Search is bounded: it never returns more than ten matches regardless of
// what the caller asks for.
func (s *Service) Search(ctx context.Context, companyID, q string) ([]Employee, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	return s.Store.Search(ctx, companyID, q, searchCap)
}

func (s *Service) Members(ctx context.Context, companyID, departmentID string) ([]Employee, error) {
	return s.Store.Members(ctx, companyID, departmentID)
}

func (s *Service) Reports(ctx context.Context, companyID, managerID string) ([]Employee, error) {
	return s.Store.Reports(ctx, companyID, managerID)
}

func (s *Service) CreateDepartment(ctx context.Context, companyID, name, description, headID string) (Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Department{}, fmt.Errorf("%w: department name is required", ErrValidation)
	}
	return s.Store.CreateDepartment(ctx, Department{
		CompanyID:   companyID,
		Name:        name,
		Description: description,
		HeadID:      headID,
	})
}

func (s *Service) UpdateDepartment(ctx context.Context, companyID, departmentID, name, description, headID string) (Department, error) {
	prev, err := s.Store.GetDepartment(ctx, companyID, departmentID)
	if err != nil {
		return Department{}, err
	}
	if name = strings.TrimSpace(name); name != "" {
		prev.Name = name
	}
	if description != "" {
		prev.Description = description
	}
	if headID != "" {
		prev.HeadID = headID
	}
	return s.Store.UpdateDepartment(ctx, prev)
}

func (s *Service) DeleteDepartment(ctx context.Context, companyID, departmentID string) error {
	return s.Store.DeleteDepartment(ctx, companyID, departmentID)
}

func (s *Service) GetDepartment(ctx context.Context, companyID, departmentID string) (Department, error) {
	return s.Store.GetDepartment(ctx, companyID, departmentID)
}

func (s *Service) ListDepartments(ctx context.Context, companyID string) ([]Department, error) {
	return s.Store.ListDepartments(ctx, companyID)
}
