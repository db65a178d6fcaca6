package hrm

import (
	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/modules/hrm/presentation/controllers"
	"github.com/iota-uz/iota-admin/modules/hrm/services"
	"github.com/iota-uz/iota-admin/pkg/application"
)

type ModuleOptions struct {
	Departments department.Repository
	Users       user.Repository
	Services    services.Options
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
		services.NewDepartmentService(
			m.options.Departments,
			m.options.Users,
			app.Transactor(),
			app.EventPublisher(),
			app.ViewCache(),
			m.options.Services,
		),
	)
	app.RegisterControllers(
		controllers.NewDepartmentsController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "hrm"
}
