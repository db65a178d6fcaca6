package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/modules/org/services"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/di"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
)

// InvitationsController serves the invitee side: answering an invitation
// and the manager side of withdrawing one.
type InvitationsController struct {
	app      application.Application
	basePath string
}

func NewInvitationsController(app application.Application) application.Controller {
	return &InvitationsController{
		app:      app,
		basePath: "/api/invitations",
	}
}

func (c *InvitationsController) Key() string {
	return c.basePath
}

func (c *InvitationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{id}/accept", di.H(c.Accept)).Methods(http.MethodPost)
	router.HandleFunc("/{id}/reject", di.H(c.Reject)).Methods(http.MethodPost)
	router.HandleFunc("/{id}", di.H(c.Cancel)).Methods(http.MethodDelete)
}

func (c *InvitationsController) Accept(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	member, err := svc.AcceptInvitation(r.Context(), actorID, id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, member)
}

func (c *InvitationsController) Reject(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	invitation, err := svc.RejectInvitation(r.Context(), actorID, id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, invitation)
}

func (c *InvitationsController) Cancel(w http.ResponseWriter, r *http.Request, svc *services.OrganizationService) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	if err := svc.CancelInvitation(r.Context(), actorID, id); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK[any](w, http.StatusOK, nil)
}
