package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/modules/org/services"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/di"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

type OrganizationsController struct {
	app      application.Application
	basePath string
}

func NewOrganizationsController(app application.Application) application.Controller {
	return &OrganizationsController{
		app:      app,
		basePath: "/api/organizations",
	}
}

func (c *OrganizationsController) Key() string {
	return c.basePath
}

func (c *OrganizationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", di.H(c.List)).Methods(http.MethodGet)
	router.HandleFunc("", di.H(c.Create)).Methods(http.MethodPost)
	router.HandleFunc("/{id}", di.H(c.Get)).Methods(http.MethodGet)
	router.HandleFunc("/{id}", di.H(c.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/{id}", di.H(c.Delete)).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/members", di.H(c.ListMembers)).Methods(http.MethodGet)
	router.HandleFunc("/{id}/members", di.H(c.AddMember)).Methods(http.MethodPost)
	router.HandleFunc("/{id}/members/{userId}", di.H(c.UpdateMemberRole)).Methods(http.MethodPatch)
	router.HandleFunc("/{id}/members/{userId}", di.H(c.RemoveMember)).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/invitations", di.H(c.ListInvitations)).Methods(http.MethodGet)
	router.HandleFunc("/{id}/invitations", di.H(c.Invite)).Methods(http.MethodPost)
}

// actor returns the signed-in user or writes UNAUTHENTICATED.
func actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, serrors.Wrap(serrors.Unauthenticated, "sign in to manage organizations", err))
		return uuid.Nil, false
	}
	return id, true
}

func (c *OrganizationsController) List(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	params := organization.FindParams{
		Search:     r.URL.Query().Get("search"),
		Pagination: httpapi.QueryPagination(r),
	}
	var err error
	if params.MemberID, err = httpapi.QueryUUID(r, "memberId"); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	page, err := svc.List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, page)
}

func (c *OrganizationsController) Create(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var params organization.CreateParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	created, err := svc.Create(r.Context(), actorID, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusCreated, created)
}

func (c *OrganizationsController) Get(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	o, err := svc.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, o)
}

func (c *OrganizationsController) Update(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params organization.UpdateParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	updated, err := svc.Update(r.Context(), actorID, id, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, updated)
}

func (c *OrganizationsController) Delete(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	if err := svc.Delete(r.Context(), actorID, id); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK[any](w, http.StatusOK, nil)
}

func (c *OrganizationsController) ListMembers(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	members, err := svc.ListMembers(r.Context(), actorID, id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, members)
}

func (c *OrganizationsController) AddMember(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params organization.AddMemberParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	member, err := svc.AddMember(r.Context(), actorID, id, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusCreated, member)
}

type roleRequest struct {
	Role organization.Role `json:"role"`
}

func (c *OrganizationsController) UpdateMemberRole(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	userID, err := httpapi.PathUUID(r, "userId")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var body roleRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	member, err := svc.UpdateMemberRole(r.Context(), actorID, id, userID, body.Role)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, member)
}

func (c *OrganizationsController) RemoveMember(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	userID, err := httpapi.PathUUID(r, "userId")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	if err := svc.RemoveMember(r.Context(), actorID, id, userID); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK[any](w, http.StatusOK, nil)
}

func (c *OrganizationsController) ListInvitations(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	invitations, err := svc.ListInvitations(r.Context(), actorID, id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, invitations)
}

func (c *OrganizationsController) Invite(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params organization.InviteParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	invitation, err := svc.Invite(r.Context(), actorID, id, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusCreated, invitation)
}
