package migration

import (
	auditdomain "github.com/openwater/aquabill/internal/audit/domain"
	"github.com/openwater/aquabill/internal/config"
	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	paymentdomain "github.com/openwater/aquabill/internal/payment/domain"
	readingdomain "github.com/openwater/aquabill/internal/reading/domain"
	"github.com/openwater/aquabill/internal/seed"
	sequencedomain "github.com/openwater/aquabill/internal/sequence/domain"
	systemdomain "github.com/openwater/aquabill/internal/system/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments are dev/self-host setups; let the
			// ORM derive the schema there instead of maintaining per-dialect
			// migration sets.
			if err := conn.AutoMigrate(
				&customerdomain.Customer{},
				&systemdomain.System{},
				&connectiondomain.Connection{},
				&readingdomain.Reading{},
				&invoicedomain.ConsumptionInvoice{},
				&invoicedomain.InfractionInvoice{},
				&paymentdomain.Payment{},
				&sequencedomain.Counter{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultSystem(conn)
	}),
)
