package reportshandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/reports"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service   *reports.Service
	Companies *company.Service
}

func NewHandler(service *reports.Service, companies *company.Service) *Handler {
	return &Handler{Service: service, Companies: companies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Get("/attendance/export", h.handleAttendanceExport)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Get("/leave/export", h.handleLeaveExport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	loc, err := h.Companies.Location(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", reqID)
		return
	}
	today := attendance.DayOf(time.Now(), loc)
	dashboard, err := h.Service.Dashboard(r.Context(), user.CompanyID, today)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", reqID)
		return
	}
	api.Success(w, dashboard, reqID)
}

func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request, reqID string) (time.Time, time.Time, bool) {
	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if okFrom && okTo {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, reqID) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) handleAttendanceExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, to, ok := h.dateRange(w, r, reqID)
	if !ok {
		return
	}
	comp, err := h.Companies.Get(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build attendance export", reqID)
		return
	}
	pdf, err := h.Service.AttendancePDF(r.Context(), user.CompanyID, comp.Name, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build attendance export", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="attendance-%s-%s.pdf"`, from.Format("2006-01-02"), to.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleLeaveExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, to, ok := h.dateRange(w, r, reqID)
	if !ok {
		return
	}
	data, err := h.Service.LeaveCSV(r.Context(), user.CompanyID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build leave export", reqID)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="leave-%s-%s.csv"`, from.Format("2006-01-02"), to.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
