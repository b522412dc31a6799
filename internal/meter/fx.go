package meter

import (
	"github.com/iitsoft/asovec/internal/meter/repository"
	"github.com/iitsoft/asovec/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
