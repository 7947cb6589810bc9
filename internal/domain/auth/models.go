package auth

import "time"

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"companyId,omitempty"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// credentials carries the columns needed to verify a login; never serialized.
type credentials struct {
	User         User
	PasswordHash string
	MFAEnabled   bool
	MFASecretEnc []byte
}
