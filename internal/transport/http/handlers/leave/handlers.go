package leavehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/directory"
	"hrms/internal/domain/leave"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service   *leave.Service
	Directory *directory.Service
}

func NewHandler(service *leave.Service, dir *directory.Service) *Handler {
	return &Handler{Service: service, Directory: dir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Post("/", h.handleApply)
		r.Get("/me", h.handleMine)
		r.Get("/pending", h.handlePending)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/stats", h.handleStats)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Get("/", h.handleList)
		r.Get("/{requestID}", h.handleGet)
		r.Post("/{requestID}/approve", h.handleApprove)
		r.Post("/{requestID}/reject", h.handleReject)
		r.Post("/{requestID}/cancel", h.handleCancel)
	})
}

func (h *Handler) actor(ctx context.Context) (auth.Actor, bool) {
	user, ok := middleware.GetUser(ctx)
	if !ok {
		return auth.Actor{}, false
	}
	actor := auth.Actor{UserID: user.UserID, Role: user.Role, CompanyID: user.CompanyID}
	if emp, err := h.Directory.GetByUserID(ctx, user.CompanyID, user.UserID); err == nil {
		actor.EmployeeID = emp.ID
		actor.DepartmentID = emp.DepartmentID
	}
	return actor, true
}

func (h *Handler) failDomain(w http.ResponseWriter, reqID string, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "leave request not found", reqID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusConflict, "leave_overlap", "leave request overlaps an existing request", reqID)
	case errors.Is(err, leave.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "leave request is no longer pending", reqID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to act on this leave request", reqID)
	case errors.Is(err, leave.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile linked to this account", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload leave.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	created, err := h.Service.Apply(r.Context(), actor, payload)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_apply_failed", "failed to apply for leave")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	filter, err := h.listFilter(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
		return
	}
	requests, total, err := h.Service.Mine(r.Context(), actor, filter)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_list_failed", "failed to list leave requests")
		return
	}
	api.Success(w, map[string]any{"requests": requests, "total": total}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filter, err := h.listFilter(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
		return
	}
	requests, total, err := h.Service.List(r.Context(), user.CompanyID, filter)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_list_failed", "failed to list leave requests")
		return
	}
	api.Success(w, map[string]any{"requests": requests, "total": total}, reqID)
}

func (h *Handler) listFilter(r *http.Request) (leave.ListFilter, error) {
	q := r.URL.Query()
	from, err := shared.ParseDate(q.Get("from"))
	if err != nil {
		return leave.ListFilter{}, err
	}
	to, err := shared.ParseDate(q.Get("to"))
	if err != nil {
		return leave.ListFilter{}, err
	}
	page := shared.ParsePagination(r, 20, 100)
	return leave.ListFilter{
		EmployeeID: q.Get("employeeId"),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	requests, err := h.Service.PendingApprovals(r.Context(), actor)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_pending_failed", "failed to list pending approvals")
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	request, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		h.failDomain(w, reqID, err, "leave_get_failed", "failed to load leave request")
		return
	}
	api.Success(w, request, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		// The note is optional for approvals; ignore an empty body.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	decided, err := h.Service.Decide(r.Context(), actor, chi.URLParam(r, "requestID"), status, payload.Note)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_decide_failed", "failed to decide leave request")
		return
	}
	api.Success(w, decided, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	cancelled, err := h.Service.Cancel(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		h.failDomain(w, reqID, err, "leave_cancel_failed", "failed to cancel leave request")
		return
	}
	api.Success(w, cancelled, reqID)
}

// handleCalendar shows approved absences for a department over a range,
// defaulting to the current month.
func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	departmentID := r.URL.Query().Get("departmentId")
	if departmentID == "" {
		departmentID = actor.DepartmentID
	}
	if departmentID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_department", "departmentId is required", reqID)
		return
	}
	decision := auth.Authorize(actor, auth.ActionRead, auth.Target{
		Kind:         auth.TargetLeave,
		CompanyID:    actor.CompanyID,
		DepartmentID: departmentID,
		// The calendar is visible to the department's own members too.
		OwnerEmployeeID: actorMemberOf(actor, departmentID),
	})
	if !decision.Allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this calendar", reqID)
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
			return
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
			return
		}
		to = parsed
	}

	entries, err := h.Service.TeamCalendar(r.Context(), actor.CompanyID, departmentID, from, to)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_calendar_failed", "failed to build team calendar")
		return
	}
	api.Success(w, map[string]any{
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"entries": entries,
	}, reqID)
}

// actorMemberOf lets the self rule pass when the caller belongs to the
// department in question.
func actorMemberOf(actor auth.Actor, departmentID string) string {
	if actor.DepartmentID == departmentID {
		return actor.EmployeeID
	}
	return ""
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_employee", "employeeId is required", reqID)
		return
	}

	emp, err := h.Directory.Get(r.Context(), actor.CompanyID, employeeID)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_stats_failed", "failed to load employee")
		return
	}
	decision := auth.Authorize(actor, auth.ActionRead, auth.Target{
		Kind:            auth.TargetLeave,
		CompanyID:       emp.CompanyID,
		OwnerEmployeeID: emp.ID,
		DepartmentID:    emp.DepartmentID,
	})
	if !decision.Allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view these stats", reqID)
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 2000 {
			year = parsed
		}
	}
	stats, err := h.Service.Stats(r.Context(), actor.CompanyID, employeeID, year)
	if err != nil {
		h.failDomain(w, reqID, err, "leave_stats_failed", "failed to build leave stats")
		return
	}
	api.Success(w, map[string]any{"year": year, "stats": stats}, reqID)
}
