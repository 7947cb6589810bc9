package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/notifications"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service         *auth.Service
	Companies       *company.Service
	Mailer          notifications.Mailer
	From            string
	AllowSelfSignup bool
}

func NewHandler(service *auth.Service, companies *company.Service, mailer notifications.Mailer, from string, allowSelfSignup bool) *Handler {
	return &Handler{Service: service, Companies: companies, Mailer: mailer, From: from, AllowSelfSignup: allowSelfSignup}
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/password/forgot", h.handleForgotPassword)
		r.Post("/password/reset", h.handleResetPassword)
	})
}

// RegisterRoutes mounts the endpoints that require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/me", h.handleMe)
		r.Post("/logout", h.handleLogout)
		r.Post("/refresh", h.handleRefresh)
		r.Post("/mfa/setup", h.handleMFASetup)
		r.Post("/mfa/enable", h.handleMFAEnable)
		r.Post("/mfa/disable", h.handleMFADisable)
	})
}

type registerPayload struct {
	CompanyName string `json:"companyName"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// handleRegister creates the first admin account together with its company
// shell. The company stays locked until a plan is chosen.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if !h.AllowSelfSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", reqID)
		return
	}

	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("companyName", payload.CompanyName, "company name is required")
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if !strings.Contains(payload.Email, "@") {
		v.Add("email", "must be a valid email address")
	}
	if v.Reject(w, reqID) {
		return
	}

	userID, err := h.Service.CreateUser(r.Context(), "", payload.FullName, payload.Email, payload.Password, auth.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			api.Fail(w, http.StatusConflict, "email_taken", "email already registered", reqID)
		case errors.Is(err, auth.ErrWeakPassword):
			api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "register_failed", "registration failed", reqID)
		}
		return
	}

	comp, err := h.Companies.Create(r.Context(), payload.CompanyName, userID)
	if err != nil {
		if errors.Is(err, company.ErrNameTaken) {
			api.Fail(w, http.StatusConflict, "company_name_taken", "company name already in use", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "register_failed", "registration failed", reqID)
		return
	}
	if err := h.Service.AssignCompany(r.Context(), userID, comp.ID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "registration failed", reqID)
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password, "")
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "registration failed", reqID)
		return
	}
	api.Created(w, map[string]any{"token": result.Token, "user": result.User, "company": comp}, reqID)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password, payload.MFACode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMFARequired):
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", reqID)
		case errors.Is(err, auth.ErrMFAInvalid):
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", reqID)
		case errors.Is(err, auth.ErrInvalidCredentials):
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		}
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	h.Service.Logout(r.Context(), user.UserID, user.SessionID)
	api.Success(w, map[string]string{"status": "logged out"}, reqID)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	token, err := h.Service.Refresh(r.Context(), &auth.Claims{
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		SessionID: user.SessionID,
	})
	if err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			api.Fail(w, http.StatusUnauthorized, "session_expired", "session expired or revoked", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "refresh_failed", "token refresh failed", reqID)
		return
	}
	api.Success(w, map[string]string{"token": token}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	profile, err := h.Service.Profile(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, profile, reqID)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	// The response is identical whether or not the account exists.
	token, err := h.Service.RequestPasswordReset(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "password reset request failed", reqID)
		return
	}
	if token != "" && h.Mailer != nil {
		if err := h.Mailer.Send(r.Context(), h.From, payload.Email, "Password reset",
			"Use this token to reset your password: "+token); err != nil {
			slog.Warn("password reset email failed", "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "if the account exists, a reset link has been sent"}, reqID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	if err := h.Service.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrResetTokenInvalid):
			api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired reset token", reqID)
		case errors.Is(err, auth.ErrWeakPassword):
			api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "reset_failed", "password reset failed", reqID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "password updated"}, reqID)
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	profile, err := h.Service.Profile(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "mfa setup failed", reqID)
		return
	}
	result, err := h.Service.MFASetup(r.Context(), user.UserID, profile.Email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "mfa setup failed", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.setMFAEnabled(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.setMFAEnabled(w, r, false)
}

func (h *Handler) setMFAEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	if err := h.Service.MFASetEnabled(r.Context(), user.UserID, payload.Code, enabled); err != nil {
		if errors.Is(err, auth.ErrMFAInvalid) {
			api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "mfa update failed", reqID)
		return
	}
	api.Success(w, map[string]bool{"mfaEnabled": enabled}, reqID)
}
