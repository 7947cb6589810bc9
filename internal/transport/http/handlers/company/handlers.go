package companyhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *company.Service
}

func NewHandler(service *company.Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes mounts the company routes. They sit outside the onboarding
// gate so a fresh admin can finish setup.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/company", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).Patch("/", h.handleUpdateProfile)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).Post("/plan", h.handleChoosePlan)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).Put("/timezone", h.handleSetTimezone)
	})
	r.With(middleware.RequireRole(auth.RoleSuperAdmin)).Get("/companies", h.handleList)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	comp, err := h.Service.Get(r.Context(), user.CompanyID)
	if err != nil {
		if errors.Is(err, company.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "company_not_found", "company not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "company_failed", "failed to load company", reqID)
		return
	}
	api.Success(w, comp, reqID)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Domain string `json:"domain"`
		Size   string `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	comp, err := h.Service.UpdateProfile(r.Context(), user.CompanyID, payload.Domain, payload.Size)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_update_failed", "failed to update company", reqID)
		return
	}
	api.Success(w, comp, reqID)
}

func (h *Handler) handleChoosePlan(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	comp, err := h.Service.ChoosePlan(r.Context(), user.CompanyID, payload.Plan, user.UserID)
	if err != nil {
		if errors.Is(err, company.ErrInvalidPlan) {
			api.Fail(w, http.StatusBadRequest, "invalid_plan", "plan must be free, pro or enterprise", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "plan_failed", "failed to set plan", reqID)
		return
	}
	api.Success(w, comp, reqID)
}

func (h *Handler) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	if err := h.Service.SetTimezone(r.Context(), user.CompanyID, payload.Timezone); err != nil {
		if errors.Is(err, company.ErrInvalidTimezone) {
			api.Fail(w, http.StatusBadRequest, "invalid_timezone", "unknown IANA timezone", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "timezone_failed", "failed to set timezone", reqID)
		return
	}
	api.Success(w, map[string]string{"timezone": payload.Timezone}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	companies, total, err := h.Service.List(r.Context(), r.URL.Query().Get("search"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "companies_failed", "failed to list companies", reqID)
		return
	}
	api.Success(w, map[string]any{"companies": companies, "total": total}, reqID)
}
