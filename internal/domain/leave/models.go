package leave

import "time"

const (
	TypeSick        = "sick"
	TypeVacation    = "vacation"
	TypePersonal    = "personal"
	TypeMaternity   = "maternity"
	TypePaternity   = "paternity"
	TypeBereavement = "bereavement"
	TypeOther       = "other"
)

var Types = []string{
	TypeSick, TypeVacation, TypePersonal, TypeMaternity,
	TypePaternity, TypeBereavement, TypeOther,
}

func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	HalfDayFirst  = "first-half"
	HalfDaySecond = "second-half"
)

// Request is a leave application. Approved, rejected and cancelled are
// terminal: once a request leaves pending it never moves again.
type Request struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	EmployeeID  string     `json:"employeeId"`
	Type        string     `json:"type"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Days        float64    `json:"days"`
	HalfDay     bool       `json:"halfDay"`
	HalfDayType string     `json:"halfDayType,omitempty"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewNote  string     `json:"reviewNote,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
	Type       string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// TypeStat is days taken per leave type within a year.
type TypeStat struct {
	Type     string  `json:"type"`
	Requests int     `json:"requests"`
	Days     float64 `json:"days"`
}

// CalendarEntry is one approved absence in a team calendar range.
type CalendarEntry struct {
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Type         string    `json:"type"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Days         float64   `json:"days"`
}
