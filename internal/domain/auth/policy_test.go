package auth

import "testing"

func hrActor() Actor {
	return Actor{UserID: "u-hr", Role: RoleHR, CompanyID: "c1", EmployeeID: "e-hr", DepartmentID: "d1"}
}

func TestAuthorizeDeniesMissingCompany(t *testing.T) {
	decision := Authorize(Actor{UserID: "u1", Role: RoleAdmin}, ActionRead, Target{Kind: TargetEmployee, CompanyID: "c1"})
	if decision.Allowed {
		t.Fatal("expected deny for actor without company")
	}
	if decision.Reason != ReasonUnauthenticated {
		t.Fatalf("expected %q, got %q", ReasonUnauthenticated, decision.Reason)
	}
}

func TestAuthorizeDeniesMalformedTarget(t *testing.T) {
	decision := Authorize(hrActor(), ActionRead, Target{Kind: TargetEmployee})
	if decision.Allowed || decision.Reason != ReasonInvalidTarget {
		t.Fatalf("expected invalid-target deny, got %+v", decision)
	}
}

func TestAuthorizeCrossTenantAlwaysDenied(t *testing.T) {
	target := Target{Kind: TargetLeave, CompanyID: "c2", OwnerEmployeeID: "e9", DepartmentID: "d1"}
	for _, role := range AllRoles {
		actor := Actor{UserID: "u1", Role: role, CompanyID: "c1", EmployeeID: "e9", DepartmentID: "d1"}
		decision := Authorize(actor, ActionRead, target)
		if decision.Allowed {
			t.Fatalf("role %s crossed tenant boundary", role)
		}
		if decision.Reason != ReasonCrossTenant {
			t.Fatalf("role %s: expected cross-tenant reason, got %q", role, decision.Reason)
		}
	}
}

func TestAuthorizeAdminAndHRCompanyWide(t *testing.T) {
	target := Target{Kind: TargetEmployee, CompanyID: "c1", OwnerEmployeeID: "e2", DepartmentID: "d2"}
	for _, role := range []string{RoleAdmin, RoleHR} {
		actor := Actor{UserID: "u1", Role: role, CompanyID: "c1"}
		for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionReject} {
			if decision := Authorize(actor, action, target); !decision.Allowed {
				t.Fatalf("role %s action %s: expected allow, got %q", role, action, decision.Reason)
			}
		}
	}
}

func TestAuthorizeManagerOwnDepartmentOnly(t *testing.T) {
	manager := Actor{UserID: "u-m", Role: RoleManager, CompanyID: "c1", EmployeeID: "e-m", DepartmentID: "d1"}

	inDept := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e2", DepartmentID: "d1"}
	if decision := Authorize(manager, ActionApprove, inDept); !decision.Allowed {
		t.Fatalf("expected approve allow in own department, got %q", decision.Reason)
	}

	otherDept := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e3", DepartmentID: "d2"}
	if decision := Authorize(manager, ActionApprove, otherDept); decision.Allowed {
		t.Fatal("expected deny for leave outside manager department")
	}
}

func TestAuthorizeManagerCannotSelfApprove(t *testing.T) {
	manager := Actor{UserID: "u-m", Role: RoleManager, CompanyID: "c1", EmployeeID: "e-m", DepartmentID: "d1"}
	own := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e-m", DepartmentID: "d1", LeaveStatus: "pending"}

	decision := Authorize(manager, ActionApprove, own)
	if decision.Allowed {
		t.Fatal("manager approved their own leave")
	}
	if decision.Reason != ReasonSelfApproval {
		t.Fatalf("expected self-approval reason, got %q", decision.Reason)
	}

	// The self rule still lets a manager read and cancel their own pending leave.
	if decision := Authorize(manager, ActionRead, own); !decision.Allowed {
		t.Fatalf("expected read allow on own leave, got %q", decision.Reason)
	}
	if decision := Authorize(manager, ActionCancel, own); !decision.Allowed {
		t.Fatalf("expected cancel allow on own pending leave, got %q", decision.Reason)
	}
}

func TestAuthorizeSelfRules(t *testing.T) {
	employee := Actor{UserID: "u-e", Role: RoleEmployee, CompanyID: "c1", EmployeeID: "e1", DepartmentID: "d1"}

	own := Target{Kind: TargetEmployee, CompanyID: "c1", OwnerEmployeeID: "e1"}
	if decision := Authorize(employee, ActionRead, own); !decision.Allowed {
		t.Fatalf("expected self read allow, got %q", decision.Reason)
	}
	if decision := Authorize(employee, ActionUpdate, own); !decision.Allowed {
		t.Fatalf("expected self update allow, got %q", decision.Reason)
	}
	if decision := Authorize(employee, ActionDelete, own); decision.Allowed {
		t.Fatal("expected self delete deny")
	}

	other := Target{Kind: TargetEmployee, CompanyID: "c1", OwnerEmployeeID: "e2"}
	if decision := Authorize(employee, ActionRead, other); decision.Allowed {
		t.Fatal("expected deny reading another employee")
	}
}

func TestAuthorizeCancelOnlyWhilePending(t *testing.T) {
	employee := Actor{UserID: "u-e", Role: RoleEmployee, CompanyID: "c1", EmployeeID: "e1"}

	pending := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e1", LeaveStatus: "pending"}
	if decision := Authorize(employee, ActionCancel, pending); !decision.Allowed {
		t.Fatalf("expected cancel allow on pending leave, got %q", decision.Reason)
	}

	approved := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e1", LeaveStatus: "approved"}
	if decision := Authorize(employee, ActionCancel, approved); decision.Allowed {
		t.Fatal("expected cancel deny on approved leave")
	}

	foreign := Target{Kind: TargetLeave, CompanyID: "c1", OwnerEmployeeID: "e2", LeaveStatus: "pending"}
	if decision := Authorize(employee, ActionCancel, foreign); decision.Allowed {
		t.Fatal("expected cancel deny on another employee's leave")
	}
}
