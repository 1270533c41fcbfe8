package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/store"
)

// DepartmentStore defines the database methods needed by department and role
// handlers.
type DepartmentStore interface {
	ListDepartments(ctx context.Context) ([]store.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (store.Department, error)
	CreateDepartment(ctx context.Context, arg store.CreateDepartmentParams) (store.Department, error)
	UpdateDepartment(ctx context.Context, arg store.UpdateDepartmentParams) (store.Department, error)
	SoftDeleteDepartment(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CountStaffByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error)

	ListRoles(ctx context.Context, arg store.ListRolesParams) ([]store.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (store.Role, error)
	CreateRole(ctx context.Context, arg store.CreateRoleParams) (store.Role, error)
	UpdateRole(ctx context.Context, arg store.UpdateRoleParams) (store.Role, error)
	SoftDeleteRole(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type DepartmentHandler struct {
	store DepartmentStore
}

func NewDepartmentHandler(store DepartmentStore) *DepartmentHandler {
	return &DepartmentHandler{store: store}
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type departmentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDepartmentResponse(d store.Department) departmentResponse {
	return departmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: textPtr(d.Description),
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type departmentListResponse struct {
	departmentResponse
	StaffCount int64 `json:"staff_count"`
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	deps, err := h.store.ListDepartments(r.Context())
	if err != nil {
		log.Printf("ERROR: list departments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]departmentListResponse, 0, len(deps))
	for _, d := range deps {
		count, err := h.store.CountStaffByDepartment(r.Context(), d.ID)
		if err != nil {
			log.Printf("ERROR: count staff by department: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, departmentListResponse{departmentResponse: toDepartmentResponse(d), StaffCount: count})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid department id"})
		return
	}

	dep, err := h.store.GetDepartment(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "department not found"})
			return
		}
		log.Printf("ERROR: get department: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toDepartmentResponse(dep))
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	dep, err := h.store.CreateDepartment(r.Context(), store.CreateDepartmentParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
	})
	if err != nil {
		log.Printf("ERROR: create department: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toDepartmentResponse(dep))
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid department id"})
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	dep, err := h.store.UpdateDepartment(r.Context(), store.UpdateDepartmentParams{
		ID:          id,
		Name:        req.Name,
		Description: textOrNull(req.Description),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "department not found"})
			return
		}
		log.Printf("ERROR: update department: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toDepartmentResponse(dep))
}

// Delete deactivates a department. Departments with active staff keep their
// records; reassign the staff first.
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid department id"})
		return
	}

	count, err := h.store.CountStaffByDepartment(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count staff by department: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "department has active staff"})
		return
	}

	if _, err := h.store.SoftDeleteDepartment(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "department not found"})
			return
		}
		log.Printf("ERROR: delete department: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "department deleted"})
}

// --- Roles ---

type roleRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id"`
}

type roleResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	DepartmentID uuid.UUID `json:"department_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRoleResponse(r store.Role) roleResponse {
	return roleResponse{
		ID:           r.ID,
		Name:         r.Name,
		Description:  textPtr(r.Description),
		DepartmentID: r.DepartmentID,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (h *DepartmentHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuidOrNull(r.URL.Query().Get("department_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid department_id"})
		return
	}

	roles, err := h.store.ListRoles(r.Context(), store.ListRolesParams{DepartmentID: departmentID})
	if err != nil {
		log.Printf("ERROR: list roles: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, toRoleResponse(role))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DepartmentHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role id"})
		return
	}

	role, err := h.store.GetRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		log.Printf("ERROR: get role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *DepartmentHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "department_id is required"})
		return
	}

	role, err := h.store.CreateRole(r.Context(), store.CreateRoleParams{
		Name:         req.Name,
		Description:  textOrNull(req.Description),
		DepartmentID: departmentID,
	})
	if err != nil {
		log.Printf("ERROR: create role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *DepartmentHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role id"})
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "department_id is required"})
		return
	}

	role, err := h.store.UpdateRole(r.Context(), store.UpdateRoleParams{
		ID:           id,
		Name:         req.Name,
		Description:  textOrNull(req.Description),
		DepartmentID: departmentID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		log.Printf("ERROR: update role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *DepartmentHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role id"})
		return
	}

	if _, err := h.store.SoftDeleteRole(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "role not found"})
			return
		}
		log.Printf("ERROR: delete role: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}
