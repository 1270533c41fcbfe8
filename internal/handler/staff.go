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

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/service"
	"github.com/dinehq/api/internal/store"
)

// StaffReadStore defines the read/update methods for staff profiles.
// Onboarding goes through the staff service, which also creates the login
// account.
type StaffReadStore interface {
	ListStaff(ctx context.Context, arg store.ListStaffParams) ([]store.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (store.Staff, error)
	UpdateStaff(ctx context.Context, arg store.UpdateStaffParams) (store.Staff, error)
	SoftDeleteStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// StaffOnboarder creates a staff member plus their user account atomically.
type StaffOnboarder interface {
	OnboardStaff(ctx context.Context, arg store.CreateStaffParams, password string) (store.Staff, error)
}

type StaffHandler struct {
	store      StaffReadStore
	onboarding StaffOnboarder
}

func NewStaffHandler(store StaffReadStore, onboarding StaffOnboarder) *StaffHandler {
	return &StaffHandler{store: store, onboarding: onboarding}
}

var validEmploymentStatuses = map[string]bool{
	enum.EmploymentStatusActive:     true,
	enum.EmploymentStatusInactive:   true,
	enum.EmploymentStatusTerminated: true,
	enum.EmploymentStatusOnLeave:    true,
}

type staffRequest struct {
	EmployeeID       string `json:"employee_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Password         string `json:"password"`
	DepartmentID     string `json:"department_id"`
	RoleID           string `json:"role_id"`
	HireDate         string `json:"hire_date"`
	Salary           string `json:"salary"`
	EmploymentStatus string `json:"employment_status"`
}

type staffResponse struct {
	ID               uuid.UUID `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	UserID           uuid.UUID `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	DepartmentID     uuid.UUID `json:"department_id"`
	RoleID           uuid.UUID `json:"role_id"`
	HireDate         string    `json:"hire_date"`
	Salary           string    `json:"salary"`
	EmploymentStatus string    `json:"employment_status"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toStaffResponse(s store.Staff) staffResponse {
	return staffResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		UserID:           s.UserID,
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Email:            s.Email,
		Phone:            s.Phone,
		DepartmentID:     s.DepartmentID,
		RoleID:           s.RoleID,
		HireDate:         s.HireDate.Format("2006-01-02"),
		Salary:           numericToString(s.Salary),
		EmploymentStatus: s.EmploymentStatus,
		IsActive:         s.IsActive,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuidOrNull(r.URL.Query().Get("department_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid department_id"})
		return
	}

	staff, err := h.store.ListStaff(r.Context(), store.ListStaffParams{
		DepartmentID: departmentID,
		ActiveOnly:   r.URL.Query().Get("active_only") == "true",
	})
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, 0, len(staff))
	for _, s := range staff {
		resp = append(resp, toStaffResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff id"})
		return
	}

	staff, err := h.store.GetStaff(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: get staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(staff))
}

// Create onboards a staff member. The linked login account is created in the
// same transaction; the member signs in with phone and the given password.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.EmployeeID == "" || req.FirstName == "" || req.LastName == "" ||
		req.Email == "" || req.Phone == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "employee_id, first_name, last_name, email, phone and password are required"})
		return
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "department_id is required"})
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role_id is required"})
		return
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hire_date must be YYYY-MM-DD"})
		return
	}

	salary, err := numericFromString(req.Salary)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid salary"})
		return
	}

	status := req.EmploymentStatus
	if status == "" {
		status = enum.EmploymentStatusActive
	}
	if !validEmploymentStatuses[status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employment_status"})
		return
	}

	staff, err := h.onboarding.OnboardStaff(r.Context(), store.CreateStaffParams{
		EmployeeID:       req.EmployeeID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		DepartmentID:     departmentID,
		RoleID:           roleID,
		HireDate:         hireDate,
		Salary:           salary,
		EmploymentStatus: status,
	}, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrPhoneTaken) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone number already registered"})
			return
		}
		log.Printf("ERROR: onboard staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(staff))
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff id"})
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name, last_name, email and phone are required"})
		return
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "department_id is required"})
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role_id is required"})
		return
	}

	salary, err := numericFromString(req.Salary)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid salary"})
		return
	}

	if !validEmploymentStatuses[req.EmploymentStatus] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employment_status"})
		return
	}

	staff, err := h.store.UpdateStaff(r.Context(), store.UpdateStaffParams{
		ID:               id,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		DepartmentID:     departmentID,
		RoleID:           roleID,
		Salary:           salary,
		EmploymentStatus: req.EmploymentStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: update staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(staff))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff id"})
		return
	}

	if _, err := h.store.SoftDeleteStaff(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: delete staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "staff member deleted"})
}
