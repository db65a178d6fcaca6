package modules

import (
	"time"

	"github.com/iota-uz/iota-admin/modules/core"
	coreservices "github.com/iota-uz/iota-admin/modules/core/services"
	"github.com/iota-uz/iota-admin/modules/hrm"
	hrmpersistence "github.com/iota-uz/iota-admin/modules/hrm/infrastructure/persistence"
	hrmservices "github.com/iota-uz/iota-admin/modules/hrm/services"
	"github.com/iota-uz/iota-admin/modules/org"
	orgpersistence "github.com/iota-uz/iota-admin/modules/org/infrastructure/persistence"
	orgservices "github.com/iota-uz/iota-admin/modules/org/services"
	"github.com/iota-uz/iota-admin/pkg/application"
)

type Options struct {
	PageSize      int
	MaxPageSize   int
	InvitationTTL time.Duration
	Now           func() time.Time
}

// BuiltInModules wires the core, hrm and org modules over stores.
func BuiltInModules(stores Stores, opts Options) []application.Module {
	return []application.Module{
		core.NewModule(&core.ModuleOptions{
			Users:         stores.Users,
			Identity:      stores.Identity,
			Departments:   hrmpersistence.NewUserDepartments(stores.Departments),
			Organizations: orgpersistence.NewUserOrganizations(stores.Members),
			Services: coreservices.Options{
				PageSize:    opts.PageSize,
				MaxPageSize: opts.MaxPageSize,
				Now:         opts.Now,
			},
		}),
		hrm.NewModule(&hrm.ModuleOptions{
			Departments: stores.Departments,
			Users:       stores.Users,
			Services: hrmservices.Options{
				PageSize:    opts.PageSize,
				MaxPageSize: opts.MaxPageSize,
				Now:         opts.Now,
			},
		}),
		org.NewModule(&org.ModuleOptions{
			Organizations: stores.Organizations,
			Members:       stores.Members,
			Invitations:   stores.Invitations,
			Users:         stores.Users,
			Services: orgservices.Options{
				PageSize:      opts.PageSize,
				MaxPageSize:   opts.MaxPageSize,
				InvitationTTL: opts.InvitationTTL,
				Now:           opts.Now,
			},
		}),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
