package org

import (
	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/modules/org/presentation/controllers"
	"github.com/iota-uz/iota-admin/modules/org/services"
	"github.com/iota-uz/iota-admin/pkg/application"
)

type ModuleOptions struct {
	Organizations organization.Repository
	Members       organization.MemberRepository
	Invitations   organization.InvitationRepository
	Users         user.Repository
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
		services.NewOrganizationService(
			m.options.Organizations,
			m.options.Members,
			m.options.Invitations,
			m.options.Users,
			app.Transactor(),
			app.EventPublisher(),
			m.options.Services,
		),
	)
	app.RegisterControllers(
		controllers.NewOrganizationsController(app),
		controllers.NewInvitationsController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "org"
}
