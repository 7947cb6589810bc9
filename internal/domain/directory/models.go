package directory

import "time"

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusOnLeave    = "on_leave"
	StatusTerminated = "terminated"
)

var Statuses = []string{StatusActive, StatusInactive, StatusOnLeave, StatusTerminated}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Employee is the directory record. UserID links it to the login identity;
// Role mirrors the identity role and is never written through this package.
type Employee struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"companyId"`
	UserID       string     `json:"userId,omitempty"`
	EmployeeCode string     `json:"employeeCode"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	Position     string     `json:"position,omitempty"`
	DepartmentID string     `json:"departmentId,omitempty"`
	ManagerID    string     `json:"managerId,omitempty"`
	HireDate     *time.Time `json:"hireDate,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Department struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	HeadID        string    `json:"headId,omitempty"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListFilter narrows employee listings. Zero values mean "no filter".
type ListFilter struct {
	DepartmentID string
	Status       string
	Search       string
	Limit        int
	Offset       int
}
