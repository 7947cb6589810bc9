package attendance

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half-day"
	StatusOnLeave = "on-leave"
	StatusHoliday = "holiday"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave, StatusHoliday}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Record is one employee-day. Day is a calendar date; check-in and check-out
// carry the full timestamps.
type Record struct {
	ID               string     `json:"id"`
	CompanyID        string     `json:"companyId"`
	EmployeeID       string     `json:"employeeId"`
	Day              time.Time  `json:"date"`
	CheckIn          *time.Time `json:"checkIn,omitempty"`
	CheckOut         *time.Time `json:"checkOut,omitempty"`
	Status           string     `json:"status"`
	IsLate           bool       `json:"isLate"`
	IsEarlyDeparture bool       `json:"isEarlyDeparture"`
	WorkingHours     float64    `json:"workingHours"`
	Overtime         float64    `json:"overtime"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Summary aggregates an employee's records over a date range.
type Summary struct {
	EmployeeID   string  `json:"employeeId"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	PresentDays  int     `json:"presentDays"`
	AbsentDays   int     `json:"absentDays"`
	HalfDays     int     `json:"halfDays"`
	LeaveDays    int     `json:"leaveDays"`
	HolidayDays  int     `json:"holidayDays"`
	LateArrivals int     `json:"lateArrivals"`
	TotalHours   float64 `json:"totalHours"`
	Overtime     float64 `json:"overtime"`
}

// SnapshotEntry is one row in a department's day view. Employees with no
// record for the day appear as synthetic absents with no ID.
type SnapshotEntry struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Record       *Record `json:"record,omitempty"`
	Status       string  `json:"status"`
}

type ListFilter struct {
	From   time.Time
	To     time.Time
	Status string
	Limit  int
	Offset int
}
