package catalog

import (
	"github.com/iitsoft/asovec/internal/catalog/repository"
	"github.com/iitsoft/asovec/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
