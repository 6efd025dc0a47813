package reading

import (
	"github.com/openwater/aquabill/internal/reading/repository"
	"github.com/openwater/aquabill/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
