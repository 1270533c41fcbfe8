package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/store"
)

// AttendanceStore defines the database methods needed by attendance handlers.
type AttendanceStore interface {
	GetStaffByUserID(ctx context.Context, userID uuid.UUID) (store.Staff, error)
	ListAttendance(ctx context.Context, arg store.ListAttendanceParams) ([]store.Attendance, error)
	GetAttendance(ctx context.Context, id uuid.UUID) (store.Attendance, error)
	CheckIn(ctx context.Context, arg store.CheckInParams) (store.Attendance, error)
	CheckOut(ctx context.Context, arg store.CheckOutParams) (store.Attendance, error)
	UpdateAttendance(ctx context.Context, arg store.UpdateAttendanceParams) (store.Attendance, error)
	DeleteAttendance(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type AttendanceHandler struct {
	store AttendanceStore

	// now is swappable in tests
	now func() time.Time
}

func NewAttendanceHandler(store AttendanceStore) *AttendanceHandler {
	return &AttendanceHandler{store: store, now: time.Now}
}

var validAttendanceStatuses = map[string]bool{
	enum.AttendanceStatusPresent: true,
	enum.AttendanceStatusAbsent:  true,
	enum.AttendanceStatusLate:    true,
	enum.AttendanceStatusHalfDay: true,
	enum.AttendanceStatusLeave:   true,
}

type attendanceResponse struct {
	ID           uuid.UUID `json:"id"`
	StaffID      uuid.UUID `json:"staff_id"`
	Date         string    `json:"date"`
	CheckInTime  *string   `json:"check_in_time"`
	CheckOutTime *string   `json:"check_out_time"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toAttendanceResponse(a store.Attendance) attendanceResponse {
	return attendanceResponse{
		ID:           a.ID,
		StaffID:      a.StaffID,
		Date:         a.Date.Format("2006-01-02"),
		CheckInTime:  clockPtr(a.CheckInTime),
		CheckOutTime: clockPtr(a.CheckOutTime),
		Status:       a.Status,
		Notes:        textPtr(a.Notes),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func clockPtr(t pgtype.Time) *string {
	if !t.Valid {
		return nil
	}
	s := time.Time{}.Add(time.Duration(t.Microseconds) * time.Microsecond).Format("15:04:05")
	return &s
}

func parseClock(s string) (pgtype.Time, error) {
	if s == "" {
		return pgtype.Time{}, nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return pgtype.Time{}, err
	}
	micros := int64(t.Hour())*3600_000_000 + int64(t.Minute())*60_000_000 + int64(t.Second())*1_000_000
	return pgtype.Time{Microseconds: micros, Valid: true}, nil
}

func timeOfDay(t time.Time) pgtype.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return pgtype.Time{Microseconds: t.Sub(midnight).Microseconds(), Valid: true}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	staffID, err := uuidOrNull(r.URL.Query().Get("staff_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
		return
	}

	params := store.ListAttendanceParams{StaffID: staffID, Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			params.Limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Offset = int32(n)
		}
	}

	records, err := h.store.ListAttendance(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list attendance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]attendanceResponse, 0, len(records))
	for _, a := range records {
		resp = append(resp, toAttendanceResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

type checkInRequest struct {
	StaffID string `json:"staff_id"`
	Status  string `json:"status"`
}

// staffResolver maps a user account to its staff profile.
type staffResolver interface {
	GetStaffByUserID(ctx context.Context, userID uuid.UUID) (store.Staff, error)
}

// resolveStaffID parses an explicit staff_id, or falls back to the staff
// profile linked to the authenticated account so staff can act on their own
// record without knowing its id. Writes the error response itself.
func resolveStaffID(w http.ResponseWriter, r *http.Request, resolver staffResolver, raw string) (uuid.UUID, bool) {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
			return uuid.Nil, false
		}
		return id, true
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "staff_id is required"})
		return uuid.Nil, false
	}
	staff, err := resolver.GetStaffByUserID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no staff profile for this account"})
			return uuid.Nil, false
		}
		log.Printf("ERROR: resolve staff profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return uuid.Nil, false
	}
	return staff.ID, true
}

// CheckIn stamps the staff member in for today. A repeated check-in the same
// day overwrites the earlier stamp rather than creating a second record.
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	staffID, ok := resolveStaffID(w, r, h.store, req.StaffID)
	if !ok {
		return
	}

	status := req.Status
	if status == "" {
		status = enum.AttendanceStatusPresent
	}
	if !validAttendanceStatuses[status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	now := h.now()
	record, err := h.store.CheckIn(r.Context(), store.CheckInParams{
		StaffID:     staffID,
		Date:        dateOnly(now),
		CheckInTime: timeOfDay(now),
		Status:      status,
	})
	if err != nil {
		log.Printf("ERROR: check in: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceResponse(record))
}

type checkOutRequest struct {
	StaffID string `json:"staff_id"`
}

// CheckOut stamps the staff member out. Requires a check-in earlier today.
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	staffID, ok := resolveStaffID(w, r, h.store, req.StaffID)
	if !ok {
		return
	}

	now := h.now()
	record, err := h.store.CheckOut(r.Context(), store.CheckOutParams{
		StaffID:      staffID,
		Date:         dateOnly(now),
		CheckOutTime: timeOfDay(now),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no check-in recorded today"})
			return
		}
		log.Printf("ERROR: check out: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceResponse(record))
}

type updateAttendanceRequest struct {
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// Update lets a manager correct a record after the fact.
func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attendance id"})
		return
	}

	var req updateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !validAttendanceStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	checkIn, err := parseClock(req.CheckInTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "check_in_time must be HH:MM:SS"})
		return
	}
	checkOut, err := parseClock(req.CheckOutTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "check_out_time must be HH:MM:SS"})
		return
	}

	record, err := h.store.UpdateAttendance(r.Context(), store.UpdateAttendanceParams{
		ID:           id,
		CheckInTime:  checkIn,
		CheckOutTime: checkOut,
		Status:       req.Status,
		Notes:        textOrNull(req.Notes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "attendance record not found"})
			return
		}
		log.Printf("ERROR: update attendance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceResponse(record))
}

func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attendance id"})
		return
	}

	if _, err := h.store.DeleteAttendance(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "attendance record not found"})
			return
		}
		log.Printf("ERROR: delete attendance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "attendance record deleted"})
}
