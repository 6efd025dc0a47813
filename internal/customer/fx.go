package customer

import (
	"github.com/openwater/aquabill/internal/customer/repository"
	"github.com/openwater/aquabill/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
