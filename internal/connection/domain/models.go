package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/tariff"
)

// Connection is a physical water connection point. Its category selects the
// tariff branch and its system owns the applicable rate schedule. The core
// treats connections as read-only apart from the initial-reading baseline.
type Connection struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID `gorm:"not null;index" json:"customer_id"`
	SystemID       snowflake.ID `gorm:"not null;index" json:"system_id"`
	Category       string       `gorm:"type:text;not null" json:"category"`
	InitialReading float64      `gorm:"column:initial_reading;type:numeric(14,2);not null;default:0" json:"initial_reading"`
	Address        string       `gorm:"type:text" json:"address,omitempty"`
	Active         bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Connection) TableName() string { return "connections" }

// TariffCategory maps the stored category to the closed enum the tariff
// engine dispatches on.
func (c *Connection) TariffCategory() (tariff.Category, error) {
	return tariff.ParseCategory(c.Category)
}
