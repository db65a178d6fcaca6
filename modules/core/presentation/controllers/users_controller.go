package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/services"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/di"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
)

type UsersController struct {
	app      application.Application
	basePath string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:      app,
		basePath: "/api/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", di.H(c.List)).Methods(http.MethodGet)
	router.HandleFunc("", di.H(c.Create)).Methods(http.MethodPost)
	router.HandleFunc("/hierarchy", di.H(c.Hierarchy)).Methods(http.MethodGet)
	router.HandleFunc("/{id}", di.H(c.Get)).Methods(http.MethodGet)
	router.HandleFunc("/{id}", di.H(c.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/{id}", di.H(c.Delete)).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/status", di.H(c.UpdateStatus)).Methods(http.MethodPatch)
	router.HandleFunc("/{id}/ban", di.H(c.Ban)).Methods(http.MethodPost)
	router.HandleFunc("/{id}/unban", di.H(c.Unban)).Methods(http.MethodPost)
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	params := user.FindParams{
		Search:     r.URL.Query().Get("search"),
		Pagination: httpapi.QueryPagination(r),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := user.NewRole(raw)
		if err != nil {
			_ = httpapi.WriteError(w, err)
			return
		}
		params.Role = &role
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := user.NewStatus(raw)
		if err != nil {
			_ = httpapi.WriteError(w, err)
			return
		}
		params.Status = &status
	}
	var err error
	if params.DepartmentID, err = httpapi.QueryUUID(r, "departmentId"); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	if params.ManagerID, err = httpapi.QueryUUID(r, "managerId"); err != nil {
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

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	var params user.CreateParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	created, err := svc.Create(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusCreated, created)
}

func (c *UsersController) Hierarchy(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	forest, err := svc.Hierarchy(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, forest)
}

func (c *UsersController) Get(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	details, err := svc.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, details)
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params user.UpdateParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	updated, err := svc.Update(r.Context(), id, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, updated)
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	if err := svc.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK[any](w, http.StatusOK, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (c *UsersController) UpdateStatus(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var body statusRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	updated, err := svc.UpdateStatus(r.Context(), id, user.Status(body.Status))
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, updated)
}

func (c *UsersController) Ban(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params user.BanParams
	if err := httpapi.DecodeJSON(r, &params); err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	updated, err := svc.Ban(r.Context(), id, params)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, updated)
}

func (c *UsersController) Unban(w http.ResponseWriter, r *http.Request, svc *services.UserService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	updated, err := svc.Unban(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, updated)
}
