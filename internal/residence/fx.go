package residence

import (
	"github.com/iitsoft/asovec/internal/residence/repository"
	"github.com/iitsoft/asovec/internal/residence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("residence.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
