package project

import (
	"github.com/iitsoft/asovec/internal/project/repository"
	"github.com/iitsoft/asovec/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
