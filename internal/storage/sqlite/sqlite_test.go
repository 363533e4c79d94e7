package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "huddle-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestGroupStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup persists members and options", func(t *testing.T) {
		group := &models.Group{
			CreatorID:   "alice",
			Title:       "Roommates",
			Description: "the flat",
			Members:     []string{"alice", "bob"},
			Options: &models.GroupOptions{
				Private:    true,
				Theme:      "dark",
				RoleLabels: map[string]string{"alice": "organizer"},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("Expected 2 members, got %d", len(got.Members))
		}
		if !got.HasMember("alice") {
			t.Error("Expected creator to be a member")
		}
		if got.Options == nil || !got.Options.Private || got.Options.Theme != "dark" {
			t.Errorf("Options mismatch: %+v", got.Options)
		}
		if got.Options.RoleLabels["alice"] != "organizer" {
			t.Errorf("Role labels mismatch: %+v", got.Options.RoleLabels)
		}
	})

	t.Run("AddMember is idempotent", func(t *testing.T) {
		group := &models.Group{CreatorID: "alice", Title: "g", Members: []string{"alice"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		added, err := store.AddMember(ctx, group.ID, "carol")
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if !added {
			t.Error("Expected first AddMember to report a change")
		}

		added, err = store.AddMember(ctx, group.ID, "carol")
		if err != nil {
			t.Fatalf("Second AddMember failed: %v", err)
		}
		if added {
			t.Error("Expected second AddMember to be a no-op")
		}

		members, err := store.GroupMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Errorf("Expected 2 members after double add, got %d: %v", len(members), members)
		}
	})

	t.Run("AddMember on absent group fails NotFound", func(t *testing.T) {
		_, err := store.AddMember(ctx, "nope", "carol")
		if !apperr.IsNotFound(err) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("GroupMembers on absent group fails NotFound", func(t *testing.T) {
		_, err := store.GroupMembers(ctx, "nope")
		if !apperr.IsNotFound(err) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("RemoveMember removes exactly that member", func(t *testing.T) {
		group := &models.Group{CreatorID: "alice", Title: "g", Members: []string{"alice", "bob"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if err := store.RemoveMember(ctx, group.ID, "bob"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		members, err := store.GroupMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupMembers failed: %v", err)
		}
		if len(members) != 1 || members[0] != "alice" {
			t.Errorf("Expected [alice], got %v", members)
		}
	})

	t.Run("RemoveMember on non-member fails NotFound", func(t *testing.T) {
		group := &models.Group{CreatorID: "alice", Title: "g", Members: []string{"alice"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		err := store.RemoveMember(ctx, group.ID, "stranger")
		if !apperr.IsNotFound(err) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})
}

func TestCalendarStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateCalendar is idempotent", func(t *testing.T) {
		first, created, err := store.CreateCalendar(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateCalendar failed: %v", err)
		}
		if !created {
			t.Error("Expected first create to report created")
		}

		if _, err := store.AddItem(ctx, "alice", "e1"); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}

		second, created, err := store.CreateCalendar(ctx, "alice")
		if err != nil {
			t.Fatalf("Second CreateCalendar failed: %v", err)
		}
		if created {
			t.Error("Expected second create to be a no-op")
		}
		if second.ID != first.ID {
			t.Errorf("Expected same calendar identity, got %s and %s", first.ID, second.ID)
		}
		if len(second.Items) != 1 || second.Items[0] != "e1" {
			t.Errorf("Expected items unchanged, got %v", second.Items)
		}
	})

	t.Run("AddItem then RemoveItem restores the original set", func(t *testing.T) {
		if _, _, err := store.CreateCalendar(ctx, "bob"); err != nil {
			t.Fatalf("CreateCalendar failed: %v", err)
		}
		if _, err := store.AddItem(ctx, "bob", "keep"); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}

		before, err := store.GetCalendarByUser(ctx, "bob")
		if err != nil {
			t.Fatalf("GetCalendarByUser failed: %v", err)
		}

		if _, err := store.AddItem(ctx, "bob", "transient"); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		removed, err := store.RemoveItem(ctx, "bob", "transient")
		if err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		if !removed {
			t.Error("Expected RemoveItem to report a change")
		}

		after, err := store.GetCalendarByUser(ctx, "bob")
		if err != nil {
			t.Fatalf("GetCalendarByUser failed: %v", err)
		}
		if len(after.Items) != len(before.Items) {
			t.Errorf("Round trip changed the set: before %v, after %v", before.Items, after.Items)
		}
	})

	t.Run("AddItem without a calendar fails NotFound", func(t *testing.T) {
		_, err := store.AddItem(ctx, "nobody", "e1")
		if !apperr.IsNotFound(err) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("RemoveItem of absent ref is a no-op", func(t *testing.T) {
		if _, _, err := store.CreateCalendar(ctx, "carol"); err != nil {
			t.Fatalf("CreateCalendar failed: %v", err)
		}
		removed, err := store.RemoveItem(ctx, "carol", "never-added")
		if err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		if removed {
			t.Error("Expected no-op removal")
		}
	})

	t.Run("ItemsByUsers skips members without calendars", func(t *testing.T) {
		if _, _, err := store.CreateCalendar(ctx, "dave"); err != nil {
			t.Fatalf("CreateCalendar failed: %v", err)
		}
		if _, err := store.AddItem(ctx, "dave", "x"); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}

		items, err := store.ItemsByUsers(ctx, []string{"dave", "ghost"})
		if err != nil {
			t.Fatalf("ItemsByUsers failed: %v", err)
		}
		if len(items) != 1 || items[0] != "x" {
			t.Errorf("Expected [x], got %v", items)
		}
	})

	t.Run("ItemsByUsers does not deduplicate across calendars", func(t *testing.T) {
		for _, user := range []string{"erin", "frank"} {
			if _, _, err := store.CreateCalendar(ctx, user); err != nil {
				t.Fatalf("CreateCalendar failed: %v", err)
			}
			if _, err := store.AddItem(ctx, user, "shared"); err != nil {
				t.Fatalf("AddItem failed: %v", err)
			}
		}

		items, err := store.ItemsByUsers(ctx, []string{"erin", "frank"})
		if err != nil {
			t.Fatalf("ItemsByUsers failed: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("Expected shared ref twice, got %v", items)
		}
	})

	t.Run("Concurrent AddItem keeps both references", func(t *testing.T) {
		if _, _, err := store.CreateCalendar(ctx, "racer"); err != nil {
			t.Fatalf("CreateCalendar failed: %v", err)
		}

		var wg sync.WaitGroup
		for _, ref := range []string{"e1", "e2"} {
			wg.Add(1)
			go func(ref string) {
				defer wg.Done()
				if _, err := store.AddItem(ctx, "racer", ref); err != nil {
					t.Errorf("AddItem(%s) failed: %v", ref, err)
				}
			}(ref)
		}
		wg.Wait()

		calendar, err := store.GetCalendarByUser(ctx, "racer")
		if err != nil {
			t.Fatalf("GetCalendarByUser failed: %v", err)
		}
		if len(calendar.Items) != 2 {
			t.Errorf("Lost update: expected both refs, got %v", calendar.Items)
		}
	})
}

func TestEventStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	date := func(s string) time.Time {
		d, err := models.ParseInstant(s)
		if err != nil {
			t.Fatalf("ParseInstant(%q) failed: %v", s, err)
		}
		return d
	}

	t.Run("CreateEvent and GetEvent round trip", func(t *testing.T) {
		event := &models.Event{
			CreatorID:   "alice",
			GroupID:     "g1",
			Title:       "Dinner",
			Date:        date("2024-12-31T18:30:00Z"),
			Description: "year end",
			Attendees:   []string{"alice", "bob"},
			Options:     &models.EventOptions{Location: "home", Reminder: true},
		}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if rendered := models.FormatInstant(got.Date); rendered != "2024-12-31T18:30:00.000Z" {
			t.Errorf("Date = %q, want canonical form", rendered)
		}
		if got.CreatorID != "alice" {
			t.Errorf("CreatorID = %q", got.CreatorID)
		}
		if len(got.Attendees) != 2 {
			t.Errorf("Expected 2 attendees, got %v", got.Attendees)
		}
		if got.Options == nil || got.Options.Location != "home" || !got.Options.Reminder {
			t.Errorf("Options mismatch: %+v", got.Options)
		}
	})

	t.Run("GetEvent on absent id fails NotFound", func(t *testing.T) {
		_, err := store.GetEvent(ctx, "nope")
		if !apperr.IsNotFound(err) {
			t.Errorf("Expected NotFound, got %v", err)
		}
	})

	t.Run("ListEventsByGroup orders ascending by instant", func(t *testing.T) {
		later := &models.Event{CreatorID: "a", GroupID: "order", Title: "later", Date: date("2025-02-01T00:00:00Z")}
		earlier := &models.Event{CreatorID: "a", GroupID: "order", Title: "earlier", Date: date("2025-01-01T00:00:00Z")}
		for _, e := range []*models.Event{later, earlier} {
			if err := store.CreateEvent(ctx, e); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
		}

		events, err := store.ListEventsByGroup(ctx, "order")
		if err != nil {
			t.Fatalf("ListEventsByGroup failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0].Title != "earlier" || events[1].Title != "later" {
			t.Errorf("Wrong order: %s, %s", events[0].Title, events[1].Title)
		}
	})

	t.Run("UpdateEvent touches only supplied fields", func(t *testing.T) {
		event := &models.Event{
			CreatorID:   "alice",
			GroupID:     "g2",
			Title:       "Original",
			Date:        date("2025-03-01T10:00:00Z"),
			Description: "keep me",
			Attendees:   []string{"alice"},
		}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		title := "Renamed"
		if err := store.UpdateEvent(ctx, event.ID, &models.EventUpdate{Title: &title}); err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Title != "Renamed" {
			t.Errorf("Title = %q", got.Title)
		}
		if got.Description != "keep me" {
			t.Errorf("Description was touched: %q", got.Description)
		}
		if models.FormatInstant(got.Date) != "2025-03-01T10:00:00.000Z" {
			t.Errorf("Date was touched: %v", got.Date)
		}
		if len(got.Attendees) != 1 {
			t.Errorf("Attendees were touched: %v", got.Attendees)
		}
	})

	t.Run("UpdateEvent replaces attendees when supplied", func(t *testing.T) {
		event := &models.Event{CreatorID: "a", GroupID: "g", Title: "t", Date: date("2025-01-01"), Attendees: []string{"a", "b"}}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		if err := store.UpdateEvent(ctx, event.ID, &models.EventUpdate{Attendees: []string{"c"}}); err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}
		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if len(got.Attendees) != 1 || got.Attendees[0] != "c" {
			t.Errorf("Expected [c], got %v", got.Attendees)
		}
	})

	t.Run("AddAttendee is idempotent", func(t *testing.T) {
		event := &models.Event{CreatorID: "a", GroupID: "g", Title: "t", Date: date("2025-01-01")}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		added, err := store.AddAttendee(ctx, event.ID, "zed")
		if err != nil || !added {
			t.Fatalf("AddAttendee = (%v, %v), want change", added, err)
		}
		added, err = store.AddAttendee(ctx, event.ID, "zed")
		if err != nil {
			t.Fatalf("Second AddAttendee failed: %v", err)
		}
		if added {
			t.Error("Expected second AddAttendee to be a no-op")
		}
	})

	t.Run("DeleteEventsByCreatorAndGroup returns count", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			e := &models.Event{CreatorID: "bulk", GroupID: "bg", Title: "t", Date: date("2025-01-01")}
			if err := store.CreateEvent(ctx, e); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
		}
		other := &models.Event{CreatorID: "someone-else", GroupID: "bg", Title: "t", Date: date("2025-01-01")}
		if err := store.CreateEvent(ctx, other); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		count, err := store.DeleteEventsByCreatorAndGroup(ctx, "bulk", "bg")
		if err != nil {
			t.Fatalf("DeleteEventsByCreatorAndGroup failed: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 deleted, got %d", count)
		}

		remaining, err := store.ListEventsByGroup(ctx, "bg")
		if err != nil {
			t.Fatalf("ListEventsByGroup failed: %v", err)
		}
		if len(remaining) != 1 {
			t.Errorf("Expected the other creator's event to survive, got %d", len(remaining))
		}
	})

	t.Run("ListEventsByAttendee filters by attendance", func(t *testing.T) {
		attending := &models.Event{CreatorID: "x", GroupID: "att", Title: "in", Date: date("2025-01-01"), Attendees: []string{"watcher"}}
		notAttending := &models.Event{CreatorID: "x", GroupID: "att", Title: "out", Date: date("2025-01-02")}
		for _, e := range []*models.Event{attending, notAttending} {
			if err := store.CreateEvent(ctx, e); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
		}

		events, err := store.ListEventsByAttendee(ctx, "watcher")
		if err != nil {
			t.Fatalf("ListEventsByAttendee failed: %v", err)
		}
		if len(events) != 1 || events[0].Title != "in" {
			t.Errorf("Expected only the attended event, got %d", len(events))
		}
	})
}

func TestUserStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byName, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName == nil || byName.ID != user.ID {
		t.Errorf("GetUserByUsername = %+v", byName)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID == nil || byID.Username != "alice" {
		t.Errorf("GetUserByID = %+v", byID)
	}

	missing, err := store.GetUserByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing user, got %+v", missing)
	}
}

func TestFriendStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := &models.Friendship{RequesterID: "alice", AddresseeID: "bob"}
	if err := store.CreateFriendRequest(ctx, f); err != nil {
		t.Fatalf("CreateFriendRequest failed: %v", err)
	}
	if f.Status != models.FriendshipPending {
		t.Errorf("Status = %q, want pending", f.Status)
	}

	if err := store.AcceptFriendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AcceptFriendRequest failed: %v", err)
	}

	err := store.AcceptFriendRequest(ctx, "alice", "bob")
	if !apperr.IsNotFound(err) {
		t.Errorf("Second accept should be NotFound, got %v", err)
	}

	list, err := store.ListFriendships(ctx, "bob")
	if err != nil {
		t.Fatalf("ListFriendships failed: %v", err)
	}
	if len(list) != 1 || list[0].Status != models.FriendshipAccepted {
		t.Errorf("ListFriendships = %+v", list)
	}

	if err := store.DeleteFriendship(ctx, "bob", "alice"); err != nil {
		t.Fatalf("DeleteFriendship failed: %v", err)
	}
	err = store.DeleteFriendship(ctx, "bob", "alice")
	if !apperr.IsNotFound(err) {
		t.Errorf("Second delete should be NotFound, got %v", err)
	}
}
