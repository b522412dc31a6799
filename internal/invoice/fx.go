package invoice

import (
	"github.com/iitsoft/asovec/internal/invoice/repository"
	"github.com/iitsoft/asovec/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
