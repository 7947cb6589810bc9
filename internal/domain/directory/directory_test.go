package directory

import (
	"context"
	"errors"
	"testing"
)

func TestFullName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
	}
	for _, tc := range cases {
		e := Employee{FirstName: tc.first, LastName: tc.last}
		if got := e.FullName(); got != tc.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("retired") {
		t.Error("ValidStatus accepted unknown status")
	}
	// Employee statuses use underscores; the hyphenated form belongs to
	// attendance records, not people.
	if StatusOnLeave != "on_leave" {
		t.Errorf("StatusOnLeave = %q, want %q", StatusOnLeave, "on_leave")
	}
	if ValidStatus("on-leave") {
		t.Error("ValidStatus accepted the attendance spelling")
	}
}

// Every employee belongs to a department; the service rejects creation
// before the store is touched.
func TestCreateRequiresDepartment(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Create(context.Background(), "c1", CreateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

// The department counter only tracks active employees that belong to a
// department; every transition must release or take exactly one slot.
func TestCounted(t *testing.T) {
	cases := []struct {
		name string
		e    Employee
		want bool
	}{
		{"active with department", Employee{DepartmentID: "d1", Status: StatusActive}, true},
		{"active without department", Employee{Status: StatusActive}, false},
		{"inactive with department", Employee{DepartmentID: "d1", Status: StatusInactive}, false},
		{"terminated with department", Employee{DepartmentID: "d1", Status: StatusTerminated}, false},
	}
	for _, tc := range cases {
		if got := counted(tc.e); got != tc.want {
			t.Errorf("%s: counted = %v, want %v", tc.name, got, tc.want)
		}
	}
}
