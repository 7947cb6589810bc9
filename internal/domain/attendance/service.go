package attendance

import (
	"context"
	"fmt"
	"time"

	"hrms/internal/domain/company"
	"hrms/internal/domain/directory"
)

const (
	defaultPageSize = 31
	maxPageSize     = 100
)

type Service struct {
	Store     *Store
	Directory *directory.Service
	Company   *company.Service

	// now is swappable for tests.
	now func() time.Time
}

func NewService(store *Store, dir *directory.Service, comp *company.Service) *Service {
	return &Service{Store: store, Directory: dir, Company: comp, now: time.Now}
}

// CheckIn opens today's record for the calling user's employee profile. The
// company timezone decides what "today" and "late" mean.
func (s *Service) CheckIn(ctx context.Context, companyID, userID string) (Record, error) {
	emp, err := s.Directory.GetByUserID(ctx, companyID, userID)
	if err != nil {
		return Record{}, err
	}
	loc, err := s.Company.Location(ctx, companyID)
	if err != nil {
		return Record{}, err
	}
	now := s.now().In(loc)
	in := now
	return s.Store.CreateCheckIn(ctx, Record{
		CompanyID:  companyID,
		EmployeeID: emp.ID,
		Day:        DayOf(now, loc),
		CheckIn:    &in,
		Status:     CheckInStatus(now),
		IsLate:     IsLate(now),
	})
}

// CheckOut closes today's open record and settles worked hours, overtime and
// the final status.
func (s *Service) CheckOut(ctx context.Context, companyID, userID string) (Record, error) {
	emp, err := s.Directory.GetByUserID(ctx, companyID, userID)
	if err != nil {
		return Record{}, err
	}
	loc, err := s.Company.Location(ctx, companyID)
	if err != nil {
		return Record{}, err
	}
	now := s.now().In(loc)
	day := DayOf(now, loc)

	current, err := s.Store.ForDay(ctx, companyID, emp.ID, day)
	if err != nil {
		return Record{}, ErrNoOpenCheckIn
	}
	if current.CheckIn == nil || current.CheckOut != nil {
		return Record{}, ErrNoOpenCheckIn
	}

	worked := WorkedHours(current.CheckIn.In(loc), now)
	return s.Store.CloseCheckIn(ctx, companyID, emp.ID, day, now,
		ResolveStatus(current.Status, worked), worked, Overtime(worked), IsEarlyDeparture(now))
}

type MarkInput struct {
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes"`
}

// Mark is the manual path for HR: it upserts the employee-day and derives the
// same fields a live check-in/check-out pair would have produced.
func (s *Service) Mark(ctx context.Context, companyID string, in MarkInput) (Record, error) {
	if !ValidStatus(in.Status) {
		return Record{}, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}
	emp, err := s.Directory.Get(ctx, companyID, in.EmployeeID)
	if err != nil {
		return Record{}, err
	}
	loc, err := s.Company.Location(ctx, companyID)
	if err != nil {
		return Record{}, err
	}
	day, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return Record{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if day.After(DayOf(s.now(), loc)) {
		return Record{}, ErrFutureDate
	}

	r := Record{
		CompanyID:  companyID,
		EmployeeID: emp.ID,
		Day:        day,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Status:     in.Status,
		Notes:      in.Notes,
	}
	if in.CheckIn != nil {
		r.IsLate = IsLate(in.CheckIn.In(loc))
	}
	if in.CheckIn != nil && in.CheckOut != nil {
		if !in.CheckOut.After(*in.CheckIn) {
			return Record{}, fmt.Errorf("%w: check-out must be after check-in", ErrValidation)
		}
		r.WorkingHours = WorkedHours(in.CheckIn.In(loc), in.CheckOut.In(loc))
		r.Overtime = Overtime(r.WorkingHours)
		r.IsEarlyDeparture = IsEarlyDeparture(in.CheckOut.In(loc))
	}
	return s.Store.Upsert(ctx, r)
}

// MyAttendance lists the calling user's own records.
func (s *Service) MyAttendance(ctx context.Context, companyID, userID string, f ListFilter) ([]Record, int, error) {
	emp, err := s.Directory.GetByUserID(ctx, companyID, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.EmployeeAttendance(ctx, companyID, emp.ID, f)
}

func (s *Service) EmployeeAttendance(ctx context.Context, companyID, employeeID string, f ListFilter) ([]Record, int, error) {
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
	return s.Store.ListByEmployee(ctx, companyID, employeeID, f)
}

func (s *Service) EmployeeSummary(ctx context.Context, companyID, employeeID string, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		return Summary{}, fmt.Errorf("%w: range end precedes start", ErrValidation)
	}
	return s.Store.SummaryRange(ctx, companyID, employeeID, from, to)
}

// DepartmentSnapshot shows every active member of the department for one day.
// Members with no record are reported absent without inventing a row. A zero
// day means today in the company timezone.
func (s *Service) DepartmentSnapshot(ctx context.Context, companyID, departmentID string, day time.Time) (time.Time, []SnapshotEntry, error) {
	if day.IsZero() {
		loc, err := s.Company.Location(ctx, companyID)
		if err != nil {
			return time.Time{}, nil, err
		}
		day = DayOf(s.now(), loc)
	}
	members, err := s.Directory.Members(ctx, companyID, departmentID)
	if err != nil {
		return time.Time{}, nil, err
	}
	if len(members) == 0 {
		return day, []SnapshotEntry{}, nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	records, err := s.Store.ForEmployeesOnDay(ctx, companyID, ids, day)
	if err != nil {
		return time.Time{}, nil, err
	}

	out := make([]SnapshotEntry, 0, len(members))
	for _, m := range members {
		entry := SnapshotEntry{EmployeeID: m.ID, EmployeeName: m.FullName(), Status: StatusAbsent}
		if r, ok := records[m.ID]; ok {
			rec := r
			entry.Record = &rec
			entry.Status = r.Status
		}
		out = append(out, entry)
	}
	return day, out, nil
}
