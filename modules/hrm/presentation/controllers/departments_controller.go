package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/modules/hrm/services"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/di"
	"github.com/iota-uz/iota-admin/pkg/httpapi"
)

type DepartmentsController struct {
	app      application.Application
	basePath string
}

func NewDepartmentsController(app application.Application) application.Controller {
	return &DepartmentsController{
		app:      app,
		basePath: "/api/departments",
	}
}

func (c *DepartmentsController) Key() string {
	return c.basePath
}

func (c *DepartmentsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", di.H(c.List)).Methods(http.MethodGet)
	router.HandleFunc("", di.H(c.Create)).Methods(http.MethodPost)
	router.HandleFunc("/hierarchy", di.H(c.Hierarchy)).Methods(http.MethodGet)
	router.HandleFunc("/{id}", di.H(c.Get)).Methods(http.MethodGet)
	router.HandleFunc("/{id}", di.H(c.Update)).Methods(http.MethodPatch)
	router.HandleFunc("/{id}", di.H(c.Delete)).Methods(http.MethodDelete)
}

func (c *DepartmentsController) List(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
	params := department.FindParams{
		Search:     r.URL.Query().Get("search"),
		Pagination: httpapi.QueryPagination(r),
	}
	params.RootsOnly, _ = strconv.ParseBool(r.URL.Query().Get("rootsOnly"))
	var err error
	if params.ParentID, err = httpapi.QueryUUID(r, "parentId"); err != nil {
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

func (c *DepartmentsController) Create(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
	var params department.CreateParams
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

func (c *DepartmentsController) Hierarchy(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
	forest, err := svc.Hierarchy(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	_ = httpapi.WriteOK(w, http.StatusOK, forest)
}

func (c *DepartmentsController) Get(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
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

func (c *DepartmentsController) Update(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, err)
		return
	}
	var params department.UpdateParams
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

func (c *DepartmentsController) Delete(w http.ResponseWriter, r *http.Request, svc *services.DepartmentService) {
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
