package middleware

import (
	"context"
	"net/http"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
)

type OnboardingChecker interface {
	Onboarded(ctx context.Context, companyID string) (bool, error)
}

// RequireOnboarded blocks the main application until the company has chosen
// a plan. Auth and company-setup routes are mounted outside this guard so
// onboarding itself can complete.
func RequireOnboarded(checker OnboardingChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if user.Role == auth.RoleSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			done, err := checker.Onboarded(r.Context(), user.CompanyID)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "internal_error", "onboarding check failed", GetRequestID(r.Context()))
				return
			}
			if !done {
				api.Fail(w, http.StatusForbidden, "onboarding_incomplete", "company onboarding is not complete", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
