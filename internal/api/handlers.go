/**
 * @description
 * This file contains the HTTP handler functions for the Flixxit backend.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate business logic in the service layer, and writing the HTTP
 * response. Domain errors are mapped to status codes here and nowhere else.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Susan56789/flixxit-sub000/internal/app"
	"github.com/Susan56789/flixxit-sub000/internal/domain"
	"github.com/Susan56789/flixxit-sub000/internal/store"
)

// Handler holds the application services that handlers interact with.
type Handler struct {
	auth      *app.AuthService
	reactions *app.ReactionService
	subs      *app.SubscriptionService
	movies    *store.MovieRepository
	watchlist *store.WatchlistRepository
	logger    *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(auth *app.AuthService, reactions *app.ReactionService, subs *app.SubscriptionService, movies *store.MovieRepository, watchlist *store.WatchlistRepository, logger *slog.Logger) *Handler {
	return &Handler{
		auth:      auth,
		reactions: reactions,
		subs:      subs,
		movies:    movies,
		watchlist: watchlist,
		logger:    logger,
	}
}

// respondWithJSON writes a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError maps a domain error to a status code and writes it.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMovieNotFound),
		errors.Is(err, domain.ErrReactionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrReactionExists),
		errors.Is(err, domain.ErrDuplicate):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrTransient):
		code = http.StatusServiceUnavailable
	default:
		h.logger.Error("unexpected error", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	respondWithJSON(w, code, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrValidation
	}
	return nil
}

// --- Auth ---

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Do not leak whether the email or the password was wrong.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrValidation) {
			respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// --- Movies ---

func (h *Handler) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.ListMovies(r.Context(), 50)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, movies)
}

func (h *Handler) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetMovieByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, movie)
}

// --- Reactions ---

type reactionOp func(r *http.Request, userID, movieID string) (interface{}, error)

func (h *Handler) reactionHandler(op reactionOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		result, err := op(r, userID, chi.URLParam(r, "movieID"))
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		return h.reactions.Like(r.Context(), userID, movieID)
	})(w, r)
}

func (h *Handler) handleDislike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		return h.reactions.Dislike(r.Context(), userID, movieID)
	})(w, r)
}

func (h *Handler) handleUnlike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		return h.reactions.Unlike(r.Context(), userID, movieID)
	})(w, r)
}

func (h *Handler) handleUndislike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		return h.reactions.Undislike(r.Context(), userID, movieID)
	})(w, r)
}

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		liked, counts, err := h.reactions.ToggleLike(r.Context(), userID, movieID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"liked": liked, "counts": counts}, nil
	})(w, r)
}

func (h *Handler) handleToggleDislike(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		disliked, counts, err := h.reactions.ToggleDislike(r.Context(), userID, movieID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"disliked": disliked, "counts": counts}, nil
	})(w, r)
}

func (h *Handler) handleReactionStatus(w http.ResponseWriter, r *http.Request) {
	h.reactionHandler(func(r *http.Request, userID, movieID string) (interface{}, error) {
		return h.reactions.Status(r.Context(), userID, movieID)
	})(w, r)
}

func (h *Handler) handleEngagement(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reactions.EngagementStats(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// --- Comments ---

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.movies.ListComments(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil || req.Body == "" {
		h.respondWithError(w, domain.ErrValidation)
		return
	}

	comment := &domain.Comment{
		UserID:  userID,
		MovieID: chi.URLParam(r, "movieID"),
		Body:    req.Body,
	}
	if err := h.movies.AddComment(r.Context(), comment); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

// --- Watchlist ---

func (h *Handler) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	movies, err := h.watchlist.List(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, movies)
}

func (h *Handler) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.watchlist.Add(r.Context(), userID, chi.URLParam(r, "movieID")); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handler) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.watchlist.Remove(r.Context(), userID, chi.URLParam(r, "movieID")); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// --- Subscriptions ---

type planRequest struct {
	PlanID string `json:"plan_id"`
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	h.subscriptionMutation(w, r, h.subs.Subscribe)
}

func (h *Handler) handleExtend(w http.ResponseWriter, r *http.Request) {
	h.subscriptionMutation(w, r, h.subs.Extend)
}

func (h *Handler) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	h.subscriptionMutation(w, r, h.subs.UpdatePlan)
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.subscriptionMutation(w, r, h.subs.Reactivate)
}

func (h *Handler) subscriptionMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, planID string) (*domain.User, error)) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := op(r.Context(), userID, req.PlanID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is fine; the reason is optional.
	_ = json.NewDecoder(r.Body).Decode(&req)

	user, err := h.subs.Cancel(r.Context(), userID, req.Reason)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleSubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	history, err := h.subs.History(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

func (h *Handler) handleSubscriptionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subs.Stats(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleSetPreferredGenre(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		Genre string `json:"genre"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.subs.SetPreferredGenre(r.Context(), userID, req.Genre); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"preferred_genre": req.Genre})
}
