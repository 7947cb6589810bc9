package auth

// UserContext is the authenticated identity carried on a request context.
type UserContext struct {
	UserID    string
	CompanyID string
	Role      string
	SessionID string
}
