package payment

import (
	"github.com/openwater/aquabill/internal/payment/repository"
	"github.com/openwater/aquabill/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
