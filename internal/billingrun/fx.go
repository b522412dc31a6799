package billingrun

import (
	"github.com/iitsoft/asovec/internal/billingrun/repository"
	"github.com/iitsoft/asovec/internal/billingrun/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingrun.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
