package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/authz"
	"github.com/huddleapp/backend/internal/middleware"
	"github.com/huddleapp/backend/internal/models"
	"github.com/huddleapp/backend/internal/storage"
)

// EventService owns the event-facing operations. Mutations are gated on
// event authorship through the authz checker; the group reference on an
// event is never validated against the group store.
type EventService struct {
	store   storage.Store
	checker *authz.Checker
}

// NewEventService creates a new EventService.
func NewEventService(store storage.Store, checker *authz.Checker) *EventService {
	return &EventService{store: store, checker: checker}
}

type eventOptionsPayload struct {
	Location string `json:"location,omitempty"`
	Reminder bool   `json:"reminder,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

type createEventRequest struct {
	GroupID     string               `json:"groupId"`
	Title       string               `json:"title"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Attendees   []string             `json:"attendees"`
	Options     *eventOptionsPayload `json:"options"`
}

type eventResponse struct {
	ID          string               `json:"id"`
	CreatorID   string               `json:"creatorId"`
	GroupID     string               `json:"groupId"`
	Title       string               `json:"title"`
	Date        string               `json:"date"`
	Description string               `json:"description,omitempty"`
	Attendees   []string             `json:"attendees"`
	Options     *eventOptionsPayload `json:"options,omitempty"`
}

func eventView(e *models.Event) eventResponse {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	resp := eventResponse{
		ID:          e.ID,
		CreatorID:   e.CreatorID,
		GroupID:     e.GroupID,
		Title:       e.Title,
		Date:        models.FormatInstant(e.Date),
		Description: e.Description,
		Attendees:   attendees,
	}
	if e.Options != nil {
		resp.Options = &eventOptionsPayload{
			Location: e.Options.Location,
			Reminder: e.Options.Reminder,
			Theme:    e.Options.Theme,
		}
	}
	return resp
}

func eventViews(events []*models.Event) []eventResponse {
	views := make([]eventResponse, len(events))
	for i, e := range events {
		views[i] = eventView(e)
	}
	return views
}

// parseDate runs date text through the instant parser, converting failures
// into the InvalidInput taxonomy. Creation and update share this path.
func parseDate(text string) (time.Time, error) {
	t, err := models.ParseInstant(text)
	if err != nil {
		return time.Time{}, apperr.InvalidInput("date", err.Error())
	}
	return t, nil
}

// Create parses the date text and persists a new event with the session
// user as its immutable creator.
func (s *EventService) Create(w http.ResponseWriter, r *http.Request) {
	creatorID := middleware.GetUserID(r.Context())

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title == "" {
		writeError(w, apperr.InvalidInput("title", "must not be empty"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	event := &models.Event{
		CreatorID:   creatorID,
		GroupID:     req.GroupID,
		Title:       req.Title,
		Date:        date,
		Description: req.Description,
		Attendees:   req.Attendees,
	}
	if req.Options != nil {
		event.Options = &models.EventOptions{
			Location: req.Options.Location,
			Reminder: req.Options.Reminder,
			Theme:    req.Options.Theme,
		}
	}

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Event created", "event_id", event.ID, "creator_id", creatorID, "group_id", req.GroupID)
	writeJSON(w, http.StatusCreated, eventView(event))
}

// List returns all events ascending by instant.
func (s *EventService) List(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventViews(events))
}

// ListAttending returns events whose attendee set contains the session user.
func (s *EventService) ListAttending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	events, err := s.store.ListEventsByAttendee(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventViews(events))
}

// ListByGroup returns a group's events ascending by instant, dates rendered
// in the canonical ISO-8601 form.
func (s *EventService) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	events, err := s.store.ListEventsByGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventViews(events))
}

type updateEventRequest struct {
	Title       *string  `json:"title"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Attendees   []string `json:"attendees"`
}

// Update applies a partial update to an event the session user created.
// A supplied date is revalidated through the same parser used at creation;
// unsupplied fields are untouched.
func (s *EventService) Update(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	eventID := r.PathValue("eventID")

	if err := s.checker.Check(r.Context(), sessionUser, authz.Event(eventID), authz.RelationEventCreator); err != nil {
		writeError(w, err)
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	update := &models.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Attendees:   req.Attendees,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
		update.Date = &date
	}

	if err := s.store.UpdateEvent(r.Context(), eventID, update); err != nil {
		writeError(w, err)
		return
	}

	event, err := s.store.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Event updated", "event_id", eventID, "user_id", sessionUser)
	writeJSON(w, http.StatusOK, eventView(event))
}

// Delete removes an event the session user created.
func (s *EventService) Delete(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	eventID := r.PathValue("eventID")

	if err := s.checker.Check(r.Context(), sessionUser, authz.Event(eventID), authz.RelationEventCreator); err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteEvent(r.Context(), eventID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Event deleted", "event_id", eventID, "user_id", sessionUser)
	writeJSON(w, http.StatusOK, nil)
}

type deleteByGroupResponse struct {
	Deleted int `json:"deleted"`
}

// DeleteByGroup bulk-deletes the session user's own events in a group and
// reports the count. Other creators' events are untouched, so no authz
// check is needed beyond the session itself.
func (s *EventService) DeleteByGroup(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	groupID := r.PathValue("groupID")

	count, err := s.store.DeleteEventsByCreatorAndGroup(r.Context(), sessionUser, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Events bulk-deleted", "group_id", groupID, "creator_id", sessionUser, "count", count)
	writeJSON(w, http.StatusOK, deleteByGroupResponse{Deleted: count})
}

type addAttendeeRequest struct {
	AttendeeID string `json:"attendeeId"`
}

type addAttendeeResponse struct {
	Changed bool `json:"changed"`
}

// AddAttendee adds a user to the attendee set of an event the session user
// created. Adding someone already attending is a no-op, reported as such.
func (s *EventService) AddAttendee(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	eventID := r.PathValue("eventID")

	if err := s.checker.Check(r.Context(), sessionUser, authz.Event(eventID), authz.RelationEventCreator); err != nil {
		writeError(w, err)
		return
	}

	var req addAttendeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.AttendeeID == "" {
		writeError(w, apperr.InvalidInput("attendeeId", "must not be empty"))
		return
	}

	changed, err := s.store.AddAttendee(r.Context(), eventID, req.AttendeeID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Attendee added", "event_id", eventID, "attendee_id", req.AttendeeID, "changed", changed)
	writeJSON(w, http.StatusOK, addAttendeeResponse{Changed: changed})
}
