package service

import (
	"log/slog"
	"net/http"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/middleware"
	"github.com/huddleapp/backend/internal/models"
	"github.com/huddleapp/backend/internal/storage"
)

// FriendService is plain relationship CRUD. The calendar/event/group core
// never reads the friendship graph.
type FriendService struct {
	store storage.Store
}

// NewFriendService creates a new FriendService.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

type friendRequestPayload struct {
	AddresseeID string `json:"addresseeId"`
}

type friendshipResponse struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
	AddresseeID string `json:"addresseeId"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

func friendshipView(f *models.Friendship) friendshipResponse {
	return friendshipResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
	}
}

// Request sends a friend request from the session user.
func (s *FriendService) Request(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())

	var req friendRequestPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.AddresseeID == "" || req.AddresseeID == sessionUser {
		writeError(w, apperr.InvalidInput("addresseeId", "must name another user"))
		return
	}

	f := &models.Friendship{
		RequesterID: sessionUser,
		AddresseeID: req.AddresseeID,
	}
	if err := s.store.CreateFriendRequest(r.Context(), f); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Friend request sent", "requester_id", sessionUser, "addressee_id", req.AddresseeID)
	writeJSON(w, http.StatusCreated, friendshipView(f))
}

// Accept accepts a pending request sent to the session user.
func (s *FriendService) Accept(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	requesterID := r.PathValue("userID")

	if err := s.store.AcceptFriendRequest(r.Context(), requesterID, sessionUser); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Friend request accepted", "requester_id", requesterID, "addressee_id", sessionUser)
	writeJSON(w, http.StatusOK, nil)
}

// Remove deletes the friendship (or pending request) between the session
// user and another user, in either direction.
func (s *FriendService) Remove(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	otherID := r.PathValue("userID")

	if err := s.store.DeleteFriendship(r.Context(), sessionUser, otherID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Friendship removed", "user_id", sessionUser, "other_id", otherID)
	writeJSON(w, http.StatusOK, nil)
}

// List returns all friendship edges touching the session user.
func (s *FriendService) List(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())

	friendships, err := s.store.ListFriendships(r.Context(), sessionUser)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]friendshipResponse, len(friendships))
	for i, f := range friendships {
		views[i] = friendshipView(f)
	}
	writeJSON(w, http.StatusOK, views)
}
