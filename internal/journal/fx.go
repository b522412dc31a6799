package journal

import (
	"github.com/iitsoft/asovec/internal/journal/repository"
	"github.com/iitsoft/asovec/internal/journal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("journal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
