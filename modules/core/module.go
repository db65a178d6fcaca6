package core

import (
	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/modules/core/presentation/controllers"
	"github.com/iota-uz/iota-admin/modules/core/services"
	"github.com/iota-uz/iota-admin/pkg/application"
)

type ModuleOptions struct {
	Users         user.Repository
	Identity      identity.Provider
	Departments   user.Departments
	Organizations user.Organizations
	Services      services.Options
}

func NewModule(opts *ModuleOptions) application.Module {
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewUserService(
			m.options.Users,
			m.options.Identity,
			m.options.Departments,
			m.options.Organizations,
			app.Transactor(),
			app.EventPublisher(),
			m.options.Services,
		),
	)
	app.RegisterControllers(
		controllers.NewUsersController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
