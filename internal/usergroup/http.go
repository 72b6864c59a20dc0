// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/ctxutil"
	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/user"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pagination"
	"github.com/taibuivan/folio/pkg/pointer"
)

// maxDefinitionBytes caps install documents.
const maxDefinitionBytes = 1 << 20

// # Handler Implementation

// Handler implements the HTTP layer for user group operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new user group [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
Routes returns a [chi.Router] with the user group endpoints.

# Routing Strategy

  - Public: workflow stage descriptors.
  - Manager: every read.
  - Admin: every mutation.

Authentication itself is mounted by the server.
*/
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/workflow-stages", handler.listWorkflowStages)

	router.Group(func(manager chi.Router) {
		manager.Use(middleware.RequireRole(sec.RoleManager))
		manager.Get("/users/unassigned", handler.listUnassignedUsers)
		manager.Get("/users/{userID}/user-groups", handler.listUserGroupsForUser)
		manager.Get("/roles/{roleID}/user-group-ids", handler.listGroupIDsForRole)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/locales/{locale}", handler.installLocale)
		admin.Delete("/locales/{locale}/settings", handler.deleteLocaleSettings)
		admin.Delete("/users/{userID}/user-groups", handler.removeUserFromAllGroups)
	})

	router.Route("/contexts/{contextID}", func(scoped chi.Router) {

		// ## Reads
		scoped.Group(func(manager chi.Router) {
			manager.Use(middleware.RequireRole(sec.RoleManager))

			manager.Get("/user-groups", handler.listUserGroups)
			manager.Get("/user-groups/{id}", handler.getUserGroup)
			manager.Get("/user-groups/{id}/settings/{name}", handler.getSetting)
			manager.Get("/user-groups/{id}/users", handler.listGroupUsers)
			manager.Get("/user-groups/{id}/users/{userID}", handler.getMembership)
			manager.Get("/user-groups/{id}/stages", handler.listAssignedStages)
			manager.Get("/user-groups/{id}/stages/{stageID}", handler.getGroupStage)
			manager.Get("/stages/{stageID}/user-groups", handler.listGroupsForStage)
			manager.Get("/stages/{stageID}/users/{userID}", handler.getStageAssignment)
			manager.Get("/roles/{roleID}/default-user-group", handler.getDefaultGroup)
			manager.Get("/users", handler.listContextUsers)
			manager.Get("/users/count", handler.countContextUsers)
			manager.Get("/users/{userID}/membership", handler.getContextMembership)
		})

		// ## Mutations
		scoped.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))

			admin.Post("/user-groups", handler.createUserGroup)
			admin.Delete("/user-groups", handler.deleteContextGroups)
			admin.Post("/user-groups/install", handler.installDefinitions)
			admin.Put("/user-groups/{id}", handler.updateUserGroup)
			admin.Put("/user-groups/{id}/names", handler.renameUserGroup)
			admin.Delete("/user-groups/{id}", handler.deleteUserGroup)
			admin.Put("/user-groups/{id}/settings/{name}", handler.updateSetting)
			admin.Put("/user-groups/{id}/users/{userID}", handler.assignUser)
			admin.Delete("/user-groups/{id}/users/{userID}", handler.removeUser)
			admin.Put("/user-groups/{id}/stages/{stageID}", handler.assignStage)
			admin.Delete("/user-groups/{id}/stages/{stageID}", handler.removeStage)
			admin.Post("/locales/{locale}", handler.installLocale)
		})
	})

	return router
}

// # Payloads

// groupInput is the create/update body.
type groupInput struct {
	RoleID    role.ID           `json:"role_id"`
	Path      string            `json:"path"`
	IsDefault bool              `json:"is_default"`
	Name      map[string]string `json:"name"`
	Abbrev    map[string]string `json:"abbrev"`
}

func (input groupInput) toUserGroup(contextID int64) *UserGroup {
	group := &UserGroup{
		RoleID:    input.RoleID,
		ContextID: contextID,
		Path:      strings.TrimSpace(input.Path),
		IsDefault: input.IsDefault,
	}
	for locale, name := range input.Name {
		group.SetName(locale, name)
	}
	for locale, abbrev := range input.Abbrev {
		group.SetAbbrev(locale, abbrev)
	}
	return group
}

// namesInput is the rename body: locale -> text for each localized field.
type namesInput struct {
	Name   map[string]string `json:"name"`
	Abbrev map[string]string `json:"abbrev"`
}

// settingInput carries either a single value or per-locale values.
type settingInput struct {
	Value  *setting.Value           `json:"value"`
	Values map[string]setting.Value `json:"values"`
}

// groupView adds the name and abbrev resolved for the request locale.
type groupView struct {
	*UserGroup
	LocalizedName   string `json:"name"`
	LocalizedAbbrev string `json:"abbrev"`
}

func (handler *Handler) view(request *http.Request, group *UserGroup) groupView {
	locale := ctxutil.GetLocale(request.Context(), handler.service.DefaultLocale())
	return groupView{UserGroup: group, LocalizedName: group.Name(locale), LocalizedAbbrev: group.Abbrev(locale)}
}

func (handler *Handler) views(request *http.Request, groups []*UserGroup) []groupView {
	out := make([]groupView, len(groups))
	for i, group := range groups {
		out[i] = handler.view(request, group)
	}
	return out
}

// # Workflow Endpoints

/*
GET /api/v1/workflow-stages.

Description: Lists the supported workflow stages with their translation keys and paths.

Response:
  - 200: []workflow.Descriptor
*/
func (handler *Handler) listWorkflowStages(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.WorkflowStages())
}

// # Group Endpoints

/*
GET /api/v1/contexts/{contextID}/user-groups.

Description: Lists the groups of a context.

Request:
  - roleId: role id in hex or decimal
  - default: bool
  - userId: int (groups held by this user)

Response:
  - 200: []UserGroup
  - 400: ErrValidation: Malformed filter
*/
func (handler *Handler) listUserGroups(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{ContextID: &contextID}
	if filter.RoleID, err = roleQuery(request, "roleId"); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if filter.IsDefault, err = boolQuery(request, "default"); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if filter.UserID, err = requestutil.Int64Query(request, "userId"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	groups, err := handler.service.ListUserGroups(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.views(request, groups))
}

/*
GET /api/v1/contexts/{contextID}/user-groups/{id}.

Response:
  - 200: UserGroup
  - 404: ErrNotFound: Group not in context
*/
func (handler *Handler) getUserGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.service.GetUserGroup(request.Context(), contextID, groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.view(request, group))
}

/*
POST /api/v1/contexts/{contextID}/user-groups.

Description: Creates a group. A missing path is derived from the default-locale name.

Request (Body):
  - { "role_id": 16, "path": "", "is_default": false, "name": {"en_US": "..."}, "abbrev": {...} }

Response:
  - 201: UserGroup
  - 400: ErrInvalidJSON/Validation
*/
func (handler *Handler) createUserGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input groupInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group := input.toUserGroup(contextID)
	if err := handler.service.CreateUserGroup(request.Context(), group); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, handler.view(request, group))
}

/*
PUT /api/v1/contexts/{contextID}/user-groups/{id}.

Description: Replaces the group row and the locales given for name/abbrev.

Response:
  - 200: UserGroup
  - 404: ErrNotFound: Group not in context
*/
func (handler *Handler) updateUserGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input groupInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group := input.toUserGroup(contextID)
	group.ID = groupID
	if err := handler.service.UpdateUserGroup(request.Context(), group); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.view(request, group))
}

/*
PUT /api/v1/contexts/{contextID}/user-groups/{id}/names.

Description: Rewrites only the locales given for name/abbrev. An empty string
clears that locale.

Response:
  - 200: UserGroup
  - 404: ErrNotFound: Group not in context
*/
func (handler *Handler) renameUserGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input namesInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.service.RenameUserGroup(request.Context(), contextID, groupID, input.Name, input.Abbrev)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.view(request, group))
}

/*
DELETE /api/v1/contexts/{contextID}/user-groups/{id}.

Description: Deletes the group with its settings, user and stage assignments.

Response:
  - 204: No Content
  - 404: ErrNotFound: Group not in context
*/
func (handler *Handler) deleteUserGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteUserGroup(request.Context(), contextID, groupID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// DELETE /api/v1/contexts/{contextID}/user-groups removes every group of the context.
func (handler *Handler) deleteContextGroups(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.DeleteContextGroups(request.Context(), contextID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"removed": removed})
}

/*
POST /api/v1/contexts/{contextID}/user-groups/install.

Description: Installs default groups from an XML definition document.

Request (Body):
  - <user_groups><group roleId="0x10" name="..." abbrev="..." stages="1,3"/></user_groups>

Response:
  - 201: []UserGroup
  - 400: Malformed document
*/
func (handler *Handler) installDefinitions(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	definitions, err := ParseDefinitions(http.MaxBytesReader(writer, request.Body, maxDefinitionBytes))
	if err != nil {
		respond.Error(writer, request, validate.FieldError("body", err.Error()))
		return
	}

	groups, err := handler.service.InstallDefinitions(request.Context(), contextID, definitions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, handler.views(request, groups))
}

// GET /api/v1/contexts/{contextID}/roles/{roleID}/default-user-group returns the role's default group.
func (handler *Handler) getDefaultGroup(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	roleID, err := roleParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.service.DefaultGroupForRole(request.Context(), contextID, roleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.view(request, group))
}

// GET /api/v1/roles/{roleID}/user-group-ids?contextId= lists group ids carrying the role.
func (handler *Handler) listGroupIDsForRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := roleParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	contextID, err := requestutil.Int64Query(request, "contextId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ids, err := handler.service.GroupIDsForRole(request.Context(), roleID, contextID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ids)
}

// GET /api/v1/users/{userID}/user-groups?contextId= lists the groups a user holds.
func (handler *Handler) listUserGroupsForUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	contextID, err := requestutil.Int64Query(request, "contextId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	groups, err := handler.service.GroupsForUser(request.Context(), userID, contextID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.views(request, groups))
}

// # Setting Endpoints

// GET /api/v1/contexts/{contextID}/user-groups/{id}/settings/{name}?locale= returns values by locale.
func (handler *Handler) getSetting(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	values, err := handler.service.Setting(request.Context(), contextID, groupID,
		requestutil.Param(request, "name"), request.URL.Query().Get("locale"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, values)
}

/*
PUT /api/v1/contexts/{contextID}/user-groups/{id}/settings/{name}.

Request (Body):
  - { "value": 3 } for a non-localized setting
  - { "values": {"en_US": "Editor", "fr_CA": ""} } for a localized one; "" removes a locale

Response:
  - 204: No Content
*/
func (handler *Handler) updateSetting(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input settingInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := requestutil.Param(request, "name")
	switch {
	case input.Values != nil:
		err = handler.service.UpdateLocalizedSetting(request.Context(), contextID, groupID, name, input.Values)
	case input.Value != nil:
		err = handler.service.UpdateSetting(request.Context(), contextID, groupID, name, *input.Value)
	default:
		err = validate.FieldError("value", "Either value or values is required")
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// POST /api/v1/locales/{locale} and /contexts/{contextID}/locales/{locale} re-seed names for a locale.
func (handler *Handler) installLocale(writer http.ResponseWriter, request *http.Request) {
	var contextID *int64
	if requestutil.Param(request, "contextID") != "" {
		id, err := requestutil.Int64Param(request, "contextID")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		contextID = &id
	}

	if err := handler.service.InstallLocale(request.Context(), requestutil.Param(request, "locale"), contextID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// DELETE /api/v1/locales/{locale}/settings removes every group setting stored for a locale.
func (handler *Handler) deleteLocaleSettings(writer http.ResponseWriter, request *http.Request) {
	removed, err := handler.service.DeleteSettingsByLocale(request.Context(), requestutil.Param(request, "locale"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"removed": removed})
}

// # Membership Endpoints

/*
GET /api/v1/contexts/{contextID}/user-groups/{id}/users.

Request:
  - searchType: firstName|lastName|username|email|affiliation|userId|initial
  - search: string
  - match: is|contains|startsWith (default contains)
  - initial: string
  - userId: int
  - page, limit: int

Response:
  - 200: []user.User with pagination meta
*/
func (handler *Handler) listGroupUsers(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.searchUsers(writer, request, &groupID, &contextID)
}

/*
GET /api/v1/contexts/{contextID}/users.

Description: Searches the users of a context. With excludeRole, lists users
holding a group whose role differs from it, filtered by the search text.
*/
func (handler *Handler) listContextUsers(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	excluded, err := roleQuery(request, "excludeRole")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if excluded == nil {
		handler.searchUsers(writer, request, nil, &contextID)
		return
	}

	users, err := handler.service.UsersNotInRole(request.Context(), *excluded, &contextID, strings.TrimSpace(request.URL.Query().Get("search")))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

// GET /api/v1/users/unassigned searches users holding no group. allowDisabled defaults to true.
func (handler *Handler) listUnassignedUsers(writer http.ResponseWriter, request *http.Request) {
	search, err := searchFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	allowDisabled, err := boolQuery(request, "allowDisabled")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	users, total, err := handler.service.UsersWithoutGroups(request.Context(), search, pointer.Fallback(allowDisabled, true), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(page, total))
}

func (handler *Handler) searchUsers(writer http.ResponseWriter, request *http.Request, groupID, contextID *int64) {
	search, err := searchFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	users, total, err := handler.service.ListUsers(request.Context(), groupID, contextID, search, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(page, total))
}

// GET /api/v1/contexts/{contextID}/users/count?groupId=&roleId= counts distinct users.
func (handler *Handler) countContextUsers(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	groupID, err := requestutil.Int64Query(request, "groupId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	roleID, err := roleQuery(request, "roleId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.service.ContextUsersCount(request.Context(), contextID, groupID, roleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"count": count})
}

// GET /api/v1/contexts/{contextID}/user-groups/{id}/users/{userID} reports whether the user holds the group.
func (handler *Handler) getMembership(writer http.ResponseWriter, request *http.Request) {
	_, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.UserInGroup(request.Context(), userID, groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"member": member})
}

// GET /api/v1/contexts/{contextID}/users/{userID}/membership reports whether the user holds any group.
func (handler *Handler) getContextMembership(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.UserInAnyGroup(request.Context(), userID, &contextID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"member": member})
}

/*
PUT /api/v1/contexts/{contextID}/user-groups/{id}/users/{userID}.

Response:
  - 201: Assignment inserted
  - 200: Already assigned (duplicates skipped by policy)
  - 404: ErrNotFound: Group not in context
*/
func (handler *Handler) assignUser(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assigned, err := handler.service.AssignUser(request.Context(), contextID, groupID, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignment := Assignment{UserID: userID, UserGroupID: groupID}
	if !assigned {
		respond.OK(writer, assignment)
		return
	}
	respond.Created(writer, assignment)
}

// DELETE /api/v1/contexts/{contextID}/user-groups/{id}/users/{userID} removes the user from the group.
func (handler *Handler) removeUser(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveUser(request.Context(), contextID, groupID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// DELETE /api/v1/users/{userID}/user-groups removes the user from every group of every context.
func (handler *Handler) removeUserFromAllGroups(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveUserFromAllGroups(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Stage Endpoints

// GET /api/v1/contexts/{contextID}/user-groups/{id}/stages lists the group's stages.
func (handler *Handler) listAssignedStages(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stages, err := handler.service.AssignedStages(request.Context(), contextID, groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stages)
}

// GET /api/v1/contexts/{contextID}/user-groups/{id}/stages/{stageID} reports whether the group acts at the stage.
func (handler *Handler) getGroupStage(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	stage, err := stageParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assigned, err := handler.service.GroupAssignedToStage(request.Context(), contextID, groupID, stage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"assigned": assigned})
}

// PUT /api/v1/contexts/{contextID}/user-groups/{id}/stages/{stageID} assigns the group to a stage.
func (handler *Handler) assignStage(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	stage, err := stageParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AssignStage(request.Context(), contextID, groupID, stage); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// DELETE /api/v1/contexts/{contextID}/user-groups/{id}/stages/{stageID} removes the group from a stage.
func (handler *Handler) removeStage(writer http.ResponseWriter, request *http.Request) {
	contextID, groupID, err := groupParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	stage, err := stageParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveStage(request.Context(), contextID, groupID, stage); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/contexts/{contextID}/stages/{stageID}/user-groups.

Request:
  - omitAuthors, omitReviewers: bool
  - roleId: role id in hex or decimal

Response:
  - 200: []UserGroup ordered by role
*/
func (handler *Handler) listGroupsForStage(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	stage, err := stageParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var filter StageFilter
	omitAuthors, err := boolQuery(request, "omitAuthors")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	omitReviewers, err := boolQuery(request, "omitReviewers")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	filter.OmitAuthors = omitAuthors != nil && *omitAuthors
	filter.OmitReviewers = omitReviewers != nil && *omitReviewers
	if filter.RoleID, err = roleQuery(request, "roleId"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	groups, err := handler.service.GroupsForStage(request.Context(), contextID, stage, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.views(request, groups))
}

// GET /api/v1/contexts/{contextID}/stages/{stageID}/users/{userID} reports whether the user acts at the stage.
func (handler *Handler) getStageAssignment(writer http.ResponseWriter, request *http.Request) {
	contextID, err := requestutil.Int64Param(request, "contextID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	stage, err := stageParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64Param(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assigned, err := handler.service.UserAssignedToStage(request.Context(), contextID, userID, stage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"assigned": assigned})
}

// # Request Parsing

func groupParams(request *http.Request) (contextID, groupID int64, err error) {
	if contextID, err = requestutil.Int64Param(request, "contextID"); err != nil {
		return 0, 0, err
	}
	if groupID, err = requestutil.Int64Param(request, "id"); err != nil {
		return 0, 0, err
	}
	return contextID, groupID, nil
}

// stageParam accepts a stage id ("4") or path ("editorial").
func stageParam(request *http.Request) (workflow.Stage, error) {
	raw := requestutil.Param(request, "stageID")
	if id, err := strconv.Atoi(raw); err == nil {
		if stage := workflow.Stage(id); stage.Valid() {
			return stage, nil
		}
	} else if stage, ok := workflow.StageFromPath(raw); ok {
		return stage, nil
	}
	return 0, validate.FieldError("stageID", "Unknown workflow stage")
}

func roleParam(request *http.Request) (role.ID, error) {
	roleID, err := role.Parse(requestutil.Param(request, "roleID"))
	if err != nil {
		return 0, validate.FieldError("roleID", "Unknown role")
	}
	return roleID, nil
}

func roleQuery(request *http.Request, name string) (*role.ID, error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	roleID, err := role.Parse(raw)
	if err != nil {
		return nil, validate.FieldError(name, "Unknown role")
	}
	return &roleID, nil
}

func boolQuery(request *http.Request, name string) (*bool, error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, validate.FieldError(name, "Must be true or false")
	}
	return &value, nil
}

// searchFromRequest reads the user search parameters. match defaults to contains.
func searchFromRequest(request *http.Request) (Search, error) {
	query := request.URL.Query()

	search := Search{
		Field:   user.Field(query.Get("searchType")),
		Text:    strings.TrimSpace(query.Get("search")),
		Match:   MatchMode(query.Get("match")),
		Initial: strings.TrimSpace(query.Get("initial")),
	}
	if search.Match == "" {
		search.Match = MatchContains
	}

	validator := &validate.Validator{}
	validator.OneOf("match", string(search.Match), string(MatchIs), string(MatchContains), string(MatchStartsWith))
	validator.MaxLen("search", search.Text, 255)
	if err := validator.Err(); err != nil {
		return Search{}, err
	}

	userID, err := requestutil.Int64Query(request, "userId")
	if err != nil {
		return Search{}, err
	}
	search.UserID = userID

	return search, nil
}
