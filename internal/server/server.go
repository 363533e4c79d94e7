// Package server assembles the HTTP surface from an explicit route table.
// Every (method, path) → handler binding is a row in Routes; nothing is
// registered by reflection or annotation, so the full surface is
// inspectable in one place.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huddleapp/backend/internal/auth"
	"github.com/huddleapp/backend/internal/middleware"
	"github.com/huddleapp/backend/internal/service"
)

// Route binds one method and path pattern to a handler.
type Route struct {
	// Method is the HTTP method.
	Method string

	// Pattern is a Go 1.22 ServeMux path pattern (may contain {wildcards}).
	Pattern string

	// Handler serves the route.
	Handler http.HandlerFunc

	// Auth marks routes that require a resolved session. Unauthenticated
	// requests are rejected before the handler runs.
	Auth bool
}

// Services groups the handler owners the route table binds to.
type Services struct {
	Auth     *service.AuthService
	Calendar *service.CalendarService
	Event    *service.EventService
	Group    *service.GroupService
	Friend   *service.FriendService
}

// Routes returns the full route surface.
func Routes(s Services) []Route {
	return []Route{
		// Session resolver / user directory.
		{Method: "POST", Pattern: "/auth/register", Handler: s.Auth.Register},
		{Method: "POST", Pattern: "/auth/login", Handler: s.Auth.Login},
		{Method: "POST", Pattern: "/auth/logout", Handler: s.Auth.Logout},
		{Method: "GET", Pattern: "/auth/me", Handler: s.Auth.Me, Auth: true},

		// Calendars.
		{Method: "POST", Pattern: "/calendar", Handler: s.Calendar.Create, Auth: true},
		{Method: "PUT", Pattern: "/calendar", Handler: s.Calendar.AddItem, Auth: true},
		{Method: "PUT", Pattern: "/calendar/event", Handler: s.Calendar.AddItem, Auth: true},
		{Method: "DELETE", Pattern: "/calendar/{eventID}", Handler: s.Calendar.RemoveItem, Auth: true},
		{Method: "GET", Pattern: "/calendar/group/{groupID}", Handler: s.Calendar.GroupItems, Auth: true},

		// Groups. The invite route keeps its historical path shape with
		// the invitee named in the body.
		{Method: "POST", Pattern: "/group", Handler: s.Group.Create, Auth: true},
		{Method: "PUT", Pattern: "/group/{userID}", Handler: s.Group.Invite, Auth: true},
		{Method: "GET", Pattern: "/group/{groupID}", Handler: s.Group.Get, Auth: true},
		{Method: "GET", Pattern: "/group/{groupID}/members", Handler: s.Group.Members, Auth: true},
		{Method: "POST", Pattern: "/group/{groupID}/leave", Handler: s.Group.Leave, Auth: true},

		// Events.
		{Method: "POST", Pattern: "/event", Handler: s.Event.Create, Auth: true},
		{Method: "GET", Pattern: "/events", Handler: s.Event.List, Auth: true},
		{Method: "GET", Pattern: "/events/attending", Handler: s.Event.ListAttending, Auth: true},
		{Method: "GET", Pattern: "/events/group/{groupID}", Handler: s.Event.ListByGroup, Auth: true},
		{Method: "PATCH", Pattern: "/event/{eventID}", Handler: s.Event.Update, Auth: true},
		{Method: "DELETE", Pattern: "/event/{eventID}", Handler: s.Event.Delete, Auth: true},
		{Method: "DELETE", Pattern: "/events/group/{groupID}", Handler: s.Event.DeleteByGroup, Auth: true},
		{Method: "PUT", Pattern: "/event/{eventID}/attendees", Handler: s.Event.AddAttendee, Auth: true},

		// Friends.
		{Method: "POST", Pattern: "/friends/requests", Handler: s.Friend.Request, Auth: true},
		{Method: "PUT", Pattern: "/friends/requests/{userID}", Handler: s.Friend.Accept, Auth: true},
		{Method: "DELETE", Pattern: "/friends/{userID}", Handler: s.Friend.Remove, Auth: true},
		{Method: "GET", Pattern: "/friends", Handler: s.Friend.List, Auth: true},
	}
}

// Handler builds the mux from the route table, wrapping each route with
// metrics and, where marked, session authentication. Request logging wraps
// the whole mux.
func Handler(routes []Route, jwtManager *auth.JWTManager) http.Handler {
	requireAuth := middleware.RequireAuth(jwtManager)

	mux := http.NewServeMux()
	for _, route := range routes {
		var h http.Handler = route.Handler
		if route.Auth {
			h = requireAuth(h)
		}
		h = middleware.Metrics(route.Method+" "+route.Pattern, h)
		mux.Handle(route.Method+" "+route.Pattern, h)
	}

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return middleware.Logging(mux)
}
