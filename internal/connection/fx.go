package connection

import (
	"github.com/openwater/aquabill/internal/connection/repository"
	"github.com/openwater/aquabill/internal/connection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("connection.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
