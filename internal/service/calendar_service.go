package service

import (
	"log/slog"
	"net/http"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/authz"
	"github.com/huddleapp/backend/internal/middleware"
	"github.com/huddleapp/backend/internal/models"
	"github.com/huddleapp/backend/internal/storage"
)

// CalendarService composes the calendar store with the group and event
// concepts for the calendar-facing operations.
type CalendarService struct {
	store   storage.Store
	checker *authz.Checker
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(store storage.Store, checker *authz.Checker) *CalendarService {
	return &CalendarService{store: store, checker: checker}
}

type calendarResponse struct {
	ID      string   `json:"id"`
	UserID  string   `json:"userId"`
	Items   []string `json:"items"`
	Created bool     `json:"created"`
}

func calendarView(c *models.Calendar, created bool) calendarResponse {
	items := c.Items
	if items == nil {
		items = []string{}
	}
	return calendarResponse{ID: c.ID, UserID: c.UserID, Items: items, Created: created}
}

// Create lazily creates the session user's calendar. Calling it again
// returns the existing calendar unchanged.
func (s *CalendarService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	calendar, created, err := s.store.CreateCalendar(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	slog.Info("Calendar ensured", "user_id", userID, "created", created)
	writeJSON(w, status, calendarView(calendar, created))
}

type addItemRequest struct {
	EventID string `json:"eventId"`
}

type itemResultResponse struct {
	Changed bool     `json:"changed"`
	Items   []string `json:"items"`
}

// AddItem adds an event reference to the session user's calendar. The
// reference is not checked against the event store; calendar items are weak
// references.
func (s *CalendarService) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.EventID == "" {
		writeError(w, apperr.InvalidInput("eventId", "must not be empty"))
		return
	}

	changed, err := s.store.AddItem(r.Context(), userID, req.EventID)
	if err != nil {
		writeError(w, err)
		return
	}

	calendar, err := s.store.GetCalendarByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Calendar item added", "user_id", userID, "item", req.EventID, "changed", changed)
	writeJSON(w, http.StatusOK, itemResultResponse{Changed: changed, Items: calendar.Items})
}

// RemoveItem removes an event reference from the calendar named by the
// userId query parameter, defaulting to the session user's own. Whoever
// created the event may remove its reference from any user's calendar.
func (s *CalendarService) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	eventID := r.PathValue("eventID")

	targetUser := r.URL.Query().Get("userId")
	if targetUser == "" {
		targetUser = sessionUser
	}

	if err := s.checker.Check(r.Context(), sessionUser, authz.Event(eventID), authz.RelationEventCreator); err != nil {
		writeError(w, err)
		return
	}

	changed, err := s.store.RemoveItem(r.Context(), targetUser, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	calendar, err := s.store.GetCalendarByUser(r.Context(), targetUser)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Calendar item removed",
		"session_user", sessionUser,
		"target_user", targetUser,
		"item", eventID,
		"changed", changed,
	)
	writeJSON(w, http.StatusOK, itemResultResponse{Changed: changed, Items: calendar.Items})
}

type groupItemsResponse struct {
	GroupID string   `json:"groupId"`
	Members []string `json:"members"`
	Items   []string `json:"items"`
}

// GroupItems aggregates calendar items across a group's members: a two-hop
// read (membership snapshot, then per-member calendar reads) with no
// consistency guarantee between the hops. Members without a calendar are
// skipped; the result keeps member order and is not deduplicated.
func (s *CalendarService) GroupItems(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	members, err := s.store.GroupMembers(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := s.store.ItemsByUsers(r.Context(), members)
	if err != nil {
		writeError(w, err)
		return
	}

	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, groupItemsResponse{
		GroupID: groupID,
		Members: members,
		Items:   items,
	})
}
