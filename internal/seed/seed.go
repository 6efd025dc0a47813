package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	systemdomain "github.com/openwater/aquabill/internal/system/domain"
	"gorm.io/gorm"
)

const defaultSystemName = "Central"

// EnsureDefaultSystem seeds one billing system with the standard rate
// schedule so a fresh install can ingest readings immediately. Existing
// systems are never touched.
func EnsureDefaultSystem(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&systemdomain.System{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		system := systemdomain.System{
			ID:   node.Generate(),
			Name: defaultSystemName,

			AvailabilityFee: 50,
			FountainRate:    10,

			DomesticBand1Max:   5,
			DomesticBand1Price: 225.81,
			DomesticBand2Max:   10,
			DomesticBand2Price: 65.91,
			DomesticBand3Price: 74.11,

			MunicipalTiered:   false,
			MunicipalFlatRate: 5,

			CommerceBaseFee:        100,
			CommerceMinConsumption: 20,
			CommerceOverageRate:    7.5,

			IndustrialBaseFee:        200,
			IndustrialMinConsumption: 50,
			IndustrialOverageRate:    9,

			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := system.Validate(); err != nil {
			return err
		}
		return tx.WithContext(ctx).Create(&system).Error
	})
}
