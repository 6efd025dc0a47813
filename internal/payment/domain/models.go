package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Payment records the automatic settlement of a consumption invoice from a
// customer's prepaid balance. It is created only when credit was applied
// and never represents a manual or external payment.
type Payment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	InvoiceID  snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Amount     float64      `gorm:"type:numeric(14,2);not null" json:"amount"`
	Date       time.Time    `gorm:"not null" json:"date"`
	Note       string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }
