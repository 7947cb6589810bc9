package auth

// The policy engine is a pure decision function. Handlers gate routes by role;
// services call Authorize with the concrete target before any mutation that
// depends on who owns the record or which department it belongs to.

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

type TargetKind string

const (
	TargetEmployee   TargetKind = "employee"
	TargetDepartment TargetKind = "department"
	TargetAttendance TargetKind = "attendance"
	TargetLeave      TargetKind = "leave"
	TargetCompany    TargetKind = "company"
)

const (
	ReasonUnauthenticated = "unauthenticated-context"
	ReasonInvalidTarget   = "invalid-target"
	ReasonCrossTenant     = "cross-tenant"
	ReasonSelfApproval    = "self-approval"
	ReasonRoleDenied      = "role-denied"
)

// Actor is the authenticated caller. EmployeeID and DepartmentID are empty for
// identities with no employee record (e.g. a fresh company owner).
type Actor struct {
	UserID       string
	Role         string
	CompanyID    string
	EmployeeID   string
	DepartmentID string
}

// Target describes the entity an action is aimed at. OwnerEmployeeID is the
// employee the record belongs to; DepartmentID is that employee's department.
type Target struct {
	Kind            TargetKind
	CompanyID       string
	OwnerEmployeeID string
	DepartmentID    string
	LeaveStatus     string
}

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

const leaveStatusPending = "pending"

// Authorize evaluates the role and relationship rules in precedence order;
// the first matching rule wins.
func Authorize(actor Actor, action Action, target Target) Decision {
	if actor.CompanyID == "" {
		return Deny(ReasonUnauthenticated)
	}
	if target.Kind == "" || target.CompanyID == "" {
		return Deny(ReasonInvalidTarget)
	}
	// Tenant isolation holds for every role and every entity type.
	if target.CompanyID != actor.CompanyID {
		return Deny(ReasonCrossTenant)
	}

	switch actor.Role {
	case RoleAdmin, RoleHR, RoleSuperAdmin:
		switch action {
		case ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionReject:
			return Allow()
		}
	case RoleManager:
		if managedKind(target.Kind) && target.DepartmentID != "" && target.DepartmentID == actor.DepartmentID {
			switch action {
			case ActionRead:
				return Allow()
			case ActionApprove, ActionReject:
				if actor.EmployeeID != "" && target.OwnerEmployeeID == actor.EmployeeID {
					return Deny(ReasonSelfApproval)
				}
				return Allow()
			}
		}
	}

	if actor.EmployeeID != "" && target.OwnerEmployeeID == actor.EmployeeID {
		switch action {
		case ActionRead, ActionUpdate:
			return Allow()
		case ActionCancel:
			if target.Kind == TargetLeave && target.LeaveStatus == leaveStatusPending {
				return Allow()
			}
		}
	}

	return Deny(ReasonRoleDenied)
}

func managedKind(kind TargetKind) bool {
	return kind == TargetLeave || kind == TargetAttendance
}
