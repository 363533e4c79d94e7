package service_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventBody struct {
	ID        string   `json:"id"`
	CreatorID string   `json:"creatorId"`
	GroupID   string   `json:"groupId"`
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Attendees []string `json:"attendees"`
}

func createEvent(t *testing.T, ts *testServer, sess session, groupID, title, date string) eventBody {
	t.Helper()
	resp := ts.do("POST", "/event", sess.Token, map[string]interface{}{
		"groupId": groupID,
		"title":   title,
		"date":    date,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var event eventBody
	decodeBody(t, resp, &event)
	return event
}

func TestCreateEventRejectsBadDate(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.register("alice")

	resp := ts.do("POST", "/event", sess.Token, map[string]interface{}{
		"groupId": "g1",
		"title":   "Party",
		"date":    "not-a-date",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventDateRendersCanonically(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.register("alice")

	createEvent(t, ts, sess, "g1", "NYE", "2024-12-31T18:30:00Z")

	resp := ts.do("GET", "/events/group/g1", sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []eventBody
	decodeBody(t, resp, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-12-31T18:30:00.000Z", events[0].Date)
}

func TestEventsByGroupOrderedAscending(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.register("alice")

	createEvent(t, ts, sess, "g1", "second", "2025-05-01T00:00:00Z")
	createEvent(t, ts, sess, "g1", "first", "2025-04-01T00:00:00Z")
	createEvent(t, ts, sess, "other", "elsewhere", "2025-01-01T00:00:00Z")

	resp := ts.do("GET", "/events/group/g1", sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []eventBody
	decodeBody(t, resp, &events)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Title)
	assert.Equal(t, "second", events[1].Title)
}

func TestUpdateEventIsCreatorGatedAndPartial(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register("creator")
	other := ts.register("other")

	event := createEvent(t, ts, creator, "g1", "Original", "2025-05-01T12:00:00Z")

	// Non-creator gets NotAllowed, not NotFound.
	resp := ts.do("PATCH", "/event/"+event.ID, other.Token, map[string]interface{}{
		"title": "Hijacked",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do("PATCH", "/event/"+event.ID, creator.Token, map[string]interface{}{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated eventBody
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "2025-05-01T12:00:00.000Z", updated.Date, "unsupplied date must be untouched")
}

func TestUpdateEventRevalidatesDate(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.register("alice")

	event := createEvent(t, ts, sess, "g1", "Party", "2025-05-01T12:00:00Z")

	resp := ts.do("PATCH", "/event/"+event.ID, sess.Token, map[string]interface{}{
		"date": "garbage",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteEventUnknownIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.register("alice")

	resp := ts.do("DELETE", "/event/ghost", sess.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkDeleteByGroupCountsOnlyOwnEvents(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice")
	bob := ts.register("bob")

	createEvent(t, ts, alice, "g1", "a1", "2025-01-01T00:00:00Z")
	createEvent(t, ts, alice, "g1", "a2", "2025-01-02T00:00:00Z")
	createEvent(t, ts, bob, "g1", "b1", "2025-01-03T00:00:00Z")

	resp := ts.do("DELETE", "/events/group/g1", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Deleted int `json:"deleted"`
	}
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.Deleted)

	resp = ts.do("GET", "/events/group/g1", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var remaining []eventBody
	decodeBody(t, resp, &remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b1", remaining[0].Title)
}

func TestAddAttendeeIdempotentAndGated(t *testing.T) {
	ts := newTestServer(t)
	creator := ts.register("creator")
	other := ts.register("other")

	event := createEvent(t, ts, creator, "g1", "Meetup", "2025-06-01T00:00:00Z")

	resp := ts.do("PUT", "/event/"+event.ID+"/attendees", other.Token, map[string]string{
		"attendeeId": other.UserID,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	add := func() bool {
		resp := ts.do("PUT", "/event/"+event.ID+"/attendees", creator.Token, map[string]string{
			"attendeeId": other.UserID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result struct {
			Changed bool `json:"changed"`
		}
		decodeBody(t, resp, &result)
		return result.Changed
	}

	assert.True(t, add())
	assert.False(t, add(), "second add must be a no-op")

	// The attendee now sees the event in their attending list.
	resp = ts.do("GET", "/events/attending", other.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var attending []eventBody
	decodeBody(t, resp, &attending)
	require.Len(t, attending, 1)
	assert.Equal(t, event.ID, attending[0].ID)
}
