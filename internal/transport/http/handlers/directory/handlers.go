package directoryhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/directory"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/search", h.handleSearch)
		r.Get("/me", h.handleGetSelf)
		r.Patch("/me", h.handleUpdateSelf)
		r.Get("/{employeeID}", h.handleGet)
		r.Get("/{employeeID}/reports", h.handleReports)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Patch("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).Delete("/{employeeID}", h.handleDelete)
	})
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.Get("/{departmentID}", h.handleGetDepartment)
		r.Get("/{departmentID}/members", h.handleDepartmentMembers)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleSuperAdmin)).Patch("/{departmentID}", h.handleUpdateDepartment)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).Delete("/{departmentID}", h.handleDeleteDepartment)
	})
}

// actor resolves the caller into a policy actor, including their employee
// profile when one is linked.
func (h *Handler) actor(ctx context.Context) (auth.Actor, bool) {
	user, ok := middleware.GetUser(ctx)
	if !ok {
		return auth.Actor{}, false
	}
	actor := auth.Actor{UserID: user.UserID, Role: user.Role, CompanyID: user.CompanyID}
	if emp, err := h.Service.GetByUserID(ctx, user.CompanyID, user.UserID); err == nil {
		actor.EmployeeID = emp.ID
		actor.DepartmentID = emp.DepartmentID
	}
	return actor, true
}

func (h *Handler) failDomain(w http.ResponseWriter, reqID string, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, directory.ErrDepartmentNotFound):
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", reqID)
	case errors.Is(err, directory.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", "employee email already in use", reqID)
	case errors.Is(err, directory.ErrDepartmentTaken):
		api.Fail(w, http.StatusConflict, "department_taken", "department name already in use", reqID)
	case errors.Is(err, directory.ErrDepartmentNotEmpty):
		api.Fail(w, http.StatusConflict, "department_not_empty", "department still has employees", reqID)
	case errors.Is(err, directory.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	q := r.URL.Query()
	employees, total, err := h.Service.List(r.Context(), user.CompanyID, directory.ListFilter{
		DepartmentID: q.Get("departmentId"),
		Status:       q.Get("status"),
		Search:       q.Get("search"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		h.failDomain(w, reqID, err, "employees_failed", "failed to list employees")
		return
	}
	api.Success(w, map[string]any{"employees": employees, "total": total, "limit": page.Limit, "offset": page.Offset}, reqID)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	employees, err := h.Service.Search(r.Context(), user.CompanyID, r.URL.Query().Get("q"))
	if err != nil {
		h.failDomain(w, reqID, err, "search_failed", "employee search failed")
		return
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	emp, err := h.Service.GetByUserID(r.Context(), user.CompanyID, user.UserID)
	if err != nil {
		h.failDomain(w, reqID, err, "employee_failed", "failed to load employee profile")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdateSelf(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var patch directory.SelfPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	emp, err := h.Service.UpdateSelf(r.Context(), user.CompanyID, user.UserID, patch)
	if err != nil {
		h.failDomain(w, reqID, err, "employee_update_failed", "failed to update profile")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	emp, err := h.Service.Get(r.Context(), actor.CompanyID, chi.URLParam(r, "employeeID"))
	if err != nil {
		h.failDomain(w, reqID, err, "employee_failed", "failed to load employee")
		return
	}
	decision := auth.Authorize(actor, auth.ActionRead, auth.Target{
		Kind:            auth.TargetEmployee,
		CompanyID:       emp.CompanyID,
		OwnerEmployeeID: emp.ID,
		DepartmentID:    emp.DepartmentID,
	})
	if !decision.Allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	reports, err := h.Service.Reports(r.Context(), user.CompanyID, chi.URLParam(r, "employeeID"))
	if err != nil {
		h.failDomain(w, reqID, err, "reports_failed", "failed to list direct reports")
		return
	}
	api.Success(w, reports, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload directory.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	emp, err := h.Service.Create(r.Context(), user.CompanyID, payload)
	if err != nil {
		h.failDomain(w, reqID, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var patch directory.AdminPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	emp, err := h.Service.Update(r.Context(), user.CompanyID, chi.URLParam(r, "employeeID"), patch)
	if err != nil {
		h.failDomain(w, reqID, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Delete(r.Context(), user.CompanyID, chi.URLParam(r, "employeeID")); err != nil {
		h.failDomain(w, reqID, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	departments, err := h.Service.ListDepartments(r.Context(), user.CompanyID)
	if err != nil {
		h.failDomain(w, reqID, err, "departments_failed", "failed to list departments")
		return
	}
	api.Success(w, departments, reqID)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	dept, err := h.Service.GetDepartment(r.Context(), user.CompanyID, chi.URLParam(r, "departmentID"))
	if err != nil {
		h.failDomain(w, reqID, err, "department_failed", "failed to load department")
		return
	}
	api.Success(w, dept, reqID)
}

func (h *Handler) handleDepartmentMembers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	members, err := h.Service.Members(r.Context(), user.CompanyID, chi.URLParam(r, "departmentID"))
	if err != nil {
		h.failDomain(w, reqID, err, "members_failed", "failed to list department members")
		return
	}
	api.Success(w, members, reqID)
}

type departmentPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HeadID      string `json:"headId"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	dept, err := h.Service.CreateDepartment(r.Context(), user.CompanyID, payload.Name, payload.Description, payload.HeadID)
	if err != nil {
		h.failDomain(w, reqID, err, "department_create_failed", "failed to create department")
		return
	}
	api.Created(w, dept, reqID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", reqID)
		return
	}
	dept, err := h.Service.UpdateDepartment(r.Context(), user.CompanyID, chi.URLParam(r, "departmentID"),
		payload.Name, payload.Description, payload.HeadID)
	if err != nil {
		h.failDomain(w, reqID, err, "department_update_failed", "failed to update department")
		return
	}
	api.Success(w, dept, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.DeleteDepartment(r.Context(), user.CompanyID, chi.URLParam(r, "departmentID")); err != nil {
		h.failDomain(w, reqID, err, "department_delete_failed", "failed to delete department")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
