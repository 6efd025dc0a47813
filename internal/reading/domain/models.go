package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Reading is one accepted meter reading. Code is the human-facing receipt
// number issued by the sequence allocator; it is unique but may have gaps
// after aborted submissions on some storage backends.
type Reading struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Code            int64        `gorm:"not null;uniqueIndex" json:"code"`
	CustomerID      snowflake.ID `gorm:"not null;index" json:"customer_id"`
	ConnectionID    snowflake.ID `gorm:"not null;index" json:"connection_id"`
	Date            time.Time    `gorm:"not null" json:"date"`
	PreviousReading float64      `gorm:"column:previous_reading;type:numeric(14,2);not null" json:"previous_reading"`
	CurrentReading  float64      `gorm:"column:current_reading;type:numeric(14,2);not null" json:"current_reading"`
	Consumption     float64      `gorm:"type:numeric(14,2);not null" json:"consumption"`
	ImagePath       string       `gorm:"column:image_path;type:text" json:"image_path,omitempty"`
	Notes           string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy       string       `gorm:"type:text;not null" json:"created_by"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Reading) TableName() string { return "readings" }
