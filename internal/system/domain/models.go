package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/tariff"
)

// System is a billing zone owning one rate schedule. The schedule shape is
// validated when the record is loaded or seeded; a system that fails
// validation is a server configuration fault, not a client error.
type System struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`

	AvailabilityFee float64 `gorm:"column:availability_fee;type:numeric(14,2);not null;default:0" json:"availability_fee"`
	FountainRate    float64 `gorm:"column:fountain_rate;type:numeric(14,2);not null" json:"fountain_rate"`

	DomesticBand1Max   float64 `gorm:"column:domestic_band1_max;type:numeric(14,2);not null" json:"domestic_band1_max"`
	DomesticBand1Price float64 `gorm:"column:domestic_band1_price;type:numeric(14,2);not null" json:"domestic_band1_price"`
	DomesticBand2Max   float64 `gorm:"column:domestic_band2_max;type:numeric(14,2);not null" json:"domestic_band2_max"`
	DomesticBand2Price float64 `gorm:"column:domestic_band2_price;type:numeric(14,2);not null" json:"domestic_band2_price"`
	DomesticBand3Price float64 `gorm:"column:domestic_band3_price;type:numeric(14,2);not null" json:"domestic_band3_price"`

	MunicipalTiered     bool    `gorm:"column:municipal_tiered;not null;default:false" json:"municipal_tiered"`
	MunicipalFlatRate   float64 `gorm:"column:municipal_flat_rate;type:numeric(14,2);not null;default:0" json:"municipal_flat_rate"`
	MunicipalBand1Max   float64 `gorm:"column:municipal_band1_max;type:numeric(14,2);not null;default:0" json:"municipal_band1_max"`
	MunicipalBand1Price float64 `gorm:"column:municipal_band1_price;type:numeric(14,2);not null;default:0" json:"municipal_band1_price"`
	MunicipalBand2Max   float64 `gorm:"column:municipal_band2_max;type:numeric(14,2);not null;default:0" json:"municipal_band2_max"`
	MunicipalBand2Price float64 `gorm:"column:municipal_band2_price;type:numeric(14,2);not null;default:0" json:"municipal_band2_price"`
	MunicipalBand3Price float64 `gorm:"column:municipal_band3_price;type:numeric(14,2);not null;default:0" json:"municipal_band3_price"`

	CommerceBaseFee        float64 `gorm:"column:commerce_base_fee;type:numeric(14,2);not null" json:"commerce_base_fee"`
	CommerceMinConsumption float64 `gorm:"column:commerce_min_consumption;type:numeric(14,2);not null" json:"commerce_min_consumption"`
	CommerceOverageRate    float64 `gorm:"column:commerce_overage_rate;type:numeric(14,2);not null" json:"commerce_overage_rate"`

	IndustrialBaseFee        float64 `gorm:"column:industrial_base_fee;type:numeric(14,2);not null" json:"industrial_base_fee"`
	IndustrialMinConsumption float64 `gorm:"column:industrial_min_consumption;type:numeric(14,2);not null" json:"industrial_min_consumption"`
	IndustrialOverageRate    float64 `gorm:"column:industrial_overage_rate;type:numeric(14,2);not null" json:"industrial_overage_rate"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (System) TableName() string { return "systems" }

// RateSchedule materializes the tariff schedule from the stored columns.
func (s *System) RateSchedule() tariff.Schedule {
	return tariff.Schedule{
		AvailabilityFee: s.AvailabilityFee,
		FountainRate:    s.FountainRate,
		DomesticBands: [3]tariff.Band{
			{Min: 0, Max: s.DomesticBand1Max, UnitPrice: s.DomesticBand1Price},
			{Min: s.DomesticBand1Max, Max: s.DomesticBand2Max, UnitPrice: s.DomesticBand2Price},
			{Min: s.DomesticBand2Max, UnitPrice: s.DomesticBand3Price},
		},
		MunicipalTiered: s.MunicipalTiered,
		MunicipalBands: [3]tariff.Band{
			{Min: 0, Max: s.MunicipalBand1Max, UnitPrice: s.MunicipalBand1Price},
			{Min: s.MunicipalBand1Max, Max: s.MunicipalBand2Max, UnitPrice: s.MunicipalBand2Price},
			{Min: s.MunicipalBand2Max, UnitPrice: s.MunicipalBand3Price},
		},
		MunicipalFlatRate: s.MunicipalFlatRate,
		Commerce: tariff.FlatWithMinimum{
			BaseFee:        s.CommerceBaseFee,
			MinConsumption: s.CommerceMinConsumption,
			OverageRate:    s.CommerceOverageRate,
		},
		Industrial: tariff.FlatWithMinimum{
			BaseFee:        s.IndustrialBaseFee,
			MinConsumption: s.IndustrialMinConsumption,
			OverageRate:    s.IndustrialOverageRate,
		},
	}
}

// Validate checks the materialized schedule. Run at load/seed time.
func (s *System) Validate() error {
	return s.RateSchedule().Validate()
}
