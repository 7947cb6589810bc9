package company

import "time"

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

var Plans = []string{PlanFree, PlanPro, PlanEnterprise}

func ValidPlan(plan string) bool {
	for _, p := range Plans {
		if p == plan {
			return true
		}
	}
	return false
}

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain,omitempty"`
	Size        string    `json:"size,omitempty"`
	Plan        string    `json:"plan,omitempty"`
	OwnerUserID string    `json:"ownerUserId,omitempty"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Onboarded reports whether the company may use the main application; a
// company with no plan keeps its users at the onboarding step.
func (c Company) Onboarded() bool {
	return c.Plan != ""
}
