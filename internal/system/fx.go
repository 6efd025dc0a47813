package system

import (
	"github.com/openwater/aquabill/internal/system/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("system.repository",
	fx.Provide(repository.Provide),
)
