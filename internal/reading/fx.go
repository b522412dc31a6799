package reading

import (
	"github.com/iitsoft/asovec/internal/reading/repository"
	"github.com/iitsoft/asovec/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
