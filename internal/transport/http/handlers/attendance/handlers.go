package attendancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/directory"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service   *attendance.Service
	Directory *directory.Service
}

func NewHandler(service *attendance.Service, dir *directory.Service) *Handler {
	return &Handler{Service: service, Directory: dir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/me", h.handleMyAttendance)
		r.Get("/me/summary", h.handleMySummary)
		r.Get("/employee/{employeeID}", h.handleEmployeeAttendance)
		r.Get("/employee/{employeeID}/summary", h.handleEmployeeSummary)
		r.Get("/department/{departmentID}", h.handleDepartmentSnapshot)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Post("/mark", h.handleMark)
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
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in today", reqID)
	case errors.Is(err, attendance.ErrNoOpenCheckIn):
		api.Fail(w, http.StatusNotFound, "no_open_check_in", "no open check-in for today", reqID)
	case errors.Is(err, attendance.ErrFutureDate):
		api.Fail(w, http.StatusBadRequest, "future_date", "attendance cannot be marked for a future date", reqID)
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", reqID)
	case errors.Is(err, attendance.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile linked to this account", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	record, err := h.Service.CheckIn(r.Context(), user.CompanyID, user.UserID)
	if err != nil {
		h.failDomain(w, reqID, err, "check_in_failed", "check-in failed")
		return
	}
	api.Created(w, record, reqID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	record, err := h.Service.CheckOut(r.Context(), user.CompanyID, user.UserID)
	if err != nil {
		h.failDomain(w, reqID, err, "check_out_failed", "check-out failed")
		return
	}
	api.Success(w, record, reqID)
}

func listFilter(r *http.Request) (attendance.ListFilter, error) {
	q := r.URL.Query()
	from, err := shared.ParseDate(q.Get("from"))
	if err != nil {
		return attendance.ListFilter{}, err
	}
	to, err := shared.ParseDate(q.Get("to"))
	if err != nil {
		return attendance.ListFilter{}, err
	}
	page := shared.ParsePagination(r, 31, 100)
	return attendance.ListFilter{
		From:   from,
		To:     to,
		Status: q.Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

func (h *Handler) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	filter, err := listFilter(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
		return
	}
	records, total, err := h.Service.MyAttendance(r.Context(), user.CompanyID, user.UserID, filter)
	if err != nil {
		h.failDomain(w, reqID, err, "attendance_failed", "failed to list attendance")
		return
	}
	api.Success(w, map[string]any{"records": records, "total": total}, reqID)
}

func (h *Handler) handleMySummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	emp, err := h.Directory.GetByUserID(r.Context(), user.CompanyID, user.UserID)
	if err != nil {
		h.failDomain(w, reqID, err, "summary_failed", "failed to build summary")
		return
	}
	h.writeSummary(w, r, user.CompanyID, emp.ID, reqID)
}

// handleEmployeeAttendance serves another employee's records, gated by the
// policy engine: privileged roles company-wide, managers for their own
// department, everyone for themselves.
func (h *Handler) handleEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if !h.authorizeRead(w, r, actor, employeeID, reqID) {
		return
	}
	filter, err := listFilter(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD", reqID)
		return
	}
	records, total, err := h.Service.EmployeeAttendance(r.Context(), actor.CompanyID, employeeID, filter)
	if err != nil {
		h.failDomain(w, reqID, err, "attendance_failed", "failed to list attendance")
		return
	}
	api.Success(w, map[string]any{"records": records, "total": total}, reqID)
}

func (h *Handler) handleEmployeeSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if !h.authorizeRead(w, r, actor, employeeID, reqID) {
		return
	}
	h.writeSummary(w, r, actor.CompanyID, employeeID, reqID)
}

func (h *Handler) authorizeRead(w http.ResponseWriter, r *http.Request, actor auth.Actor, employeeID, reqID string) bool {
	emp, err := h.Directory.Get(r.Context(), actor.CompanyID, employeeID)
	if err != nil {
		h.failDomain(w, reqID, err, "attendance_failed", "failed to load employee")
		return false
	}
	decision := auth.Authorize(actor, auth.ActionRead, auth.Target{
		Kind:            auth.TargetAttendance,
		CompanyID:       emp.CompanyID,
		OwnerEmployeeID: emp.ID,
		DepartmentID:    emp.DepartmentID,
	})
	if !decision.Allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this attendance", reqID)
		return false
	}
	return true
}

func (h *Handler) writeSummary(w http.ResponseWriter, r *http.Request, companyID, employeeID, reqID string) {
	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, reqID) {
		return
	}
	summary, err := h.Service.EmployeeSummary(r.Context(), companyID, employeeID, from, to)
	if err != nil {
		h.failDomain(w, reqID, err, "summary_failed", "failed to build summary")
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleDepartmentSnapshot(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	departmentID := chi.URLParam(r, "departmentID")

	decision := auth.Authorize(actor, auth.ActionRead, auth.Target{
		Kind:         auth.TargetAttendance,
		CompanyID:    actor.CompanyID,
		DepartmentID: departmentID,
	})
	if !decision.Allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this department", reqID)
		return
	}

	var day time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", reqID)
			return
		}
		day = parsed
	}
	day, entries, err := h.Service.DepartmentSnapshot(r.Context(), actor.CompanyID, departmentID, day)
	if err != nil {
		h.failDomain(w, reqID, err, "snapshot_failed", "failed to build department snapshot")
		return
	}
	api.Success(w, map[string]any{"date": day.Format("2006-01-02"), "entries": entries}, reqID)
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload attendance.MarkInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	record, err := h.Service.Mark(r.Context(), user.CompanyID, payload)
	if err != nil {
		h.failDomain(w, reqID, err, "mark_failed", "failed to mark attendance")
		return
	}
	api.Success(w, record, reqID)
}
