package customer

import (
	"github.com/iitsoft/asovec/internal/customer/repository"
	"github.com/iitsoft/asovec/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
