package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/store"
)

// RatingStore defines the database methods needed by rating handlers.
type RatingStore interface {
	ListRatings(ctx context.Context) ([]store.Rating, error)
	CreateRating(ctx context.Context, arg store.CreateRatingParams) (store.Rating, error)
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

type RatingHandler struct {
	store RatingStore
}

func NewRatingHandler(store RatingStore) *RatingHandler {
	return &RatingHandler{store: store}
}

const maxRatingCommentLen = 250

type ratingRequest struct {
	Comment string `json:"comment"`
}

type ratingResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	RatedAt   string    `json:"rated_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toRatingResponse(rt store.Rating) ratingResponse {
	return ratingResponse{
		ID:        rt.ID,
		Name:      rt.Name,
		Comment:   rt.Comment,
		RatedAt:   rt.RatedAt.Format("2006-01-02"),
		CreatedAt: rt.CreatedAt,
	}
}

// List is public so the landing page can show recent reviews.
func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.store.ListRatings(r.Context())
	if err != nil {
		log.Printf("ERROR: list ratings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ratingResponse, 0, len(ratings))
	for _, rt := range ratings {
		resp = append(resp, toRatingResponse(rt))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create files a review under the caller's account name, falling back to
// their phone number when the account has no name on file.
func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Comment = strings.TrimSpace(req.Comment)
	if req.Comment == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "comment is required"})
		return
	}
	if len(req.Comment) > maxRatingCommentLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "comment too long"})
		return
	}

	name := claims.Phone
	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: load user for rating: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	} else {
		if full := strings.TrimSpace(user.FirstName.String + " " + user.LastName.String); full != "" {
			name = full
		} else {
			name = user.Phone
		}
	}

	rating, err := h.store.CreateRating(r.Context(), store.CreateRatingParams{
		Name:    name,
		Comment: req.Comment,
	})
	if err != nil {
		log.Printf("ERROR: create rating: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRatingResponse(rating))
}
