package audit

import (
	"github.com/openwater/aquabill/internal/audit/repository"
	"github.com/openwater/aquabill/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
