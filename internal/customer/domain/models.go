package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is an account holder. AvailableCredit is a running prepaid
// balance drained by invoice auto-settlement; it is only ever mutated inside
// the reading ingestion transaction with the row locked.
type Customer struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name            string            `gorm:"not null" json:"name"`
	Email           string            `gorm:"not null" json:"email"`
	Phone           string            `gorm:"type:text" json:"phone,omitempty"`
	AvailableCredit float64           `gorm:"column:available_credit;type:numeric(14,2);not null;default:0" json:"available_credit"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
