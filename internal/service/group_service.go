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

// GroupService owns the group-facing operations. Invites are gated on the
// inviter's own membership through the authz checker.
type GroupService struct {
	store   storage.Store
	checker *authz.Checker
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, checker *authz.Checker) *GroupService {
	return &GroupService{store: store, checker: checker}
}

type groupOptionsPayload struct {
	Private    bool              `json:"private,omitempty"`
	Theme      string            `json:"theme,omitempty"`
	RoleLabels map[string]string `json:"roleLabels,omitempty"`
}

type createGroupRequest struct {
	Title       string               `json:"title"`
	Members     []string             `json:"members"`
	Description string               `json:"description"`
	Options     *groupOptionsPayload `json:"options"`
}

type groupResponse struct {
	ID          string               `json:"id"`
	CreatorID   string               `json:"creatorId"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Members     []string             `json:"members"`
	Options     *groupOptionsPayload `json:"options,omitempty"`
	CreatedAt   int64                `json:"createdAt"`
}

func groupView(g *models.Group) groupResponse {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	resp := groupResponse{
		ID:          g.ID,
		CreatorID:   g.CreatorID,
		Title:       g.Title,
		Description: g.Description,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
	if g.Options != nil {
		resp.Options = &groupOptionsPayload{
			Private:    g.Options.Private,
			Theme:      g.Options.Theme,
			RoleLabels: g.Options.RoleLabels,
		}
	}
	return resp
}

// Create creates a group whose member set is the union of the supplied
// members and the creator, so the creator is always a member at creation
// time regardless of the list the caller sent.
func (s *GroupService) Create(w http.ResponseWriter, r *http.Request) {
	creatorID := middleware.GetUserID(r.Context())

	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title == "" {
		writeError(w, apperr.InvalidInput("title", "must not be empty"))
		return
	}

	group := &models.Group{
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		Members:     unionWithCreator(req.Members, creatorID),
	}
	if req.Options != nil {
		group.Options = &models.GroupOptions{
			Private:    req.Options.Private,
			Theme:      req.Options.Theme,
			RoleLabels: req.Options.RoleLabels,
		}
	}

	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", creatorID, "members", len(group.Members))
	writeJSON(w, http.StatusCreated, groupView(group))
}

// unionWithCreator returns the creator plus members, duplicates dropped.
func unionWithCreator(members []string, creatorID string) []string {
	seen := map[string]bool{creatorID: true}
	result := []string{creatorID}
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

type inviteRequest struct {
	GroupID   string `json:"groupId"`
	InviteeID string `json:"inviteeId"`
}

type inviteResponse struct {
	AlreadyMember bool     `json:"alreadyMember"`
	Members       []string `json:"members"`
}

// Invite adds a user to a group. The session user must themselves be a
// member before the invite runs; inviting someone who is already a member
// is reported as a no-op, not an error.
func (s *GroupService) Invite(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.GroupID == "" || req.InviteeID == "" {
		writeError(w, apperr.InvalidInput("body", "groupId and inviteeId are required"))
		return
	}

	if err := s.checker.Check(r.Context(), sessionUser, authz.Group(req.GroupID), authz.RelationGroupMember); err != nil {
		writeError(w, err)
		return
	}

	added, err := s.store.AddMember(r.Context(), req.GroupID, req.InviteeID)
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := s.store.GroupMembers(r.Context(), req.GroupID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Group invite",
		"group_id", req.GroupID,
		"inviter_id", sessionUser,
		"invitee_id", req.InviteeID,
		"already_member", !added,
	)
	writeJSON(w, http.StatusOK, inviteResponse{AlreadyMember: !added, Members: members})
}

// Leave removes the session user from a group. A user who is not a member
// gets NotFound. The creator may leave like anyone else; the
// creator-is-member invariant binds at creation time only.
func (s *GroupService) Leave(w http.ResponseWriter, r *http.Request) {
	sessionUser := middleware.GetUserID(r.Context())
	groupID := r.PathValue("groupID")

	if err := s.store.RemoveMember(r.Context(), groupID, sessionUser); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Group left", "group_id", groupID, "user_id", sessionUser)
	writeJSON(w, http.StatusOK, nil)
}

type membersResponse struct {
	GroupID string   `json:"groupId"`
	Members []string `json:"members"`
}

// Members returns the group's member set.
func (s *GroupService) Members(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	members, err := s.store.GroupMembers(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, membersResponse{GroupID: groupID, Members: members})
}

// Get returns a group by ID.
func (s *GroupService) Get(w http.ResponseWriter, r *http.Request) {
	group, err := s.store.GetGroup(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupView(group))
}
