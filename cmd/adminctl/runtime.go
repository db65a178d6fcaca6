package main

import (
	"context"

	"github.com/iota-uz/iota-admin/internal/server"
	coreservices "github.com/iota-uz/iota-admin/modules/core/services"
	hrmservices "github.com/iota-uz/iota-admin/modules/hrm/services"
	"github.com/iota-uz/iota-admin/pkg/configuration"
)

type runtime struct {
	*server.Runtime
	ctx         context.Context
	users       *coreservices.UserService
	departments *hrmservices.DepartmentService
}

func openRuntime(ctx context.Context) (*runtime, func(), error) {
	conf := configuration.Use()
	rt, err := server.Bootstrap(ctx, conf, conf.Logger())
	if err != nil {
		conf.Unload()
		return nil, nil, withCode(exitDB, err)
	}
	closeFn := func() {
		rt.Close()
		conf.Unload()
	}
	return &runtime{
		Runtime:     rt,
		ctx:         rt.Context(ctx),
		users:       rt.App.Service(coreservices.UserService{}).(*coreservices.UserService),
		departments: rt.App.Service(hrmservices.DepartmentService{}).(*hrmservices.DepartmentService),
	}, closeFn, nil
}
