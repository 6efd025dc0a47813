package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status of an invoice. The ingestion path only ever produces Paid or
// PartiallyPaid at creation time; the remaining states belong to downstream
// collection flows.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPaid          Status = "paid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusOverdue       Status = "overdue"
	StatusCancelled     Status = "cancelled"
)

// Document is the common surface of the two invoice variants. Keeping
// consumption and infraction invoices as distinct record types removes any
// conditionally-required fields from either model.
type Document interface {
	DocumentID() snowflake.ID
	DocumentCustomerID() snowflake.ID
	DocumentTotal() float64
	DocumentStatus() Status
}

// ConsumptionInvoice bills a single meter reading, 1:1.
type ConsumptionInvoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;index" json:"customer_id"`
	ConnectionID  snowflake.ID `gorm:"not null;index" json:"connection_id"`
	ReadingID     snowflake.ID `gorm:"not null;uniqueIndex" json:"reading_id"`
	BaseAmount    float64      `gorm:"column:base_amount;type:numeric(14,2);not null" json:"base_amount"`
	TaxAmount     float64      `gorm:"column:tax_amount;type:numeric(14,2);not null" json:"tax_amount"`
	TotalAmount   float64      `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`
	CreditApplied float64      `gorm:"column:credit_applied;type:numeric(14,2);not null;default:0" json:"credit_applied"`
	RemainingDebt float64      `gorm:"column:remaining_debt;type:numeric(14,2);not null" json:"remaining_debt"`
	Status        Status       `gorm:"type:text;not null" json:"status"`
	DueDate       time.Time    `gorm:"not null" json:"due_date"`
	CreatedBy     string       `gorm:"type:text;not null" json:"created_by"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ConsumptionInvoice) TableName() string { return "consumption_invoices" }

func (i ConsumptionInvoice) DocumentID() snowflake.ID         { return i.ID }
func (i ConsumptionInvoice) DocumentCustomerID() snowflake.ID { return i.CustomerID }
func (i ConsumptionInvoice) DocumentTotal() float64           { return i.TotalAmount }
func (i ConsumptionInvoice) DocumentStatus() Status           { return i.Status }

// InfractionInvoice bills a sanctioned infraction (illegal tap, broken
// seal). It has no reading, no credit settlement, and starts Pending.
type InfractionInvoice struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID `gorm:"not null;index" json:"customer_id"`
	ConnectionID snowflake.ID `gorm:"not null;index" json:"connection_id"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	BaseAmount   float64      `gorm:"column:base_amount;type:numeric(14,2);not null" json:"base_amount"`
	TaxAmount    float64      `gorm:"column:tax_amount;type:numeric(14,2);not null" json:"tax_amount"`
	TotalAmount  float64      `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`
	Status       Status       `gorm:"type:text;not null" json:"status"`
	DueDate      time.Time    `gorm:"not null" json:"due_date"`
	CreatedBy    string       `gorm:"type:text;not null" json:"created_by"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InfractionInvoice) TableName() string { return "infraction_invoices" }

func (i InfractionInvoice) DocumentID() snowflake.ID         { return i.ID }
func (i InfractionInvoice) DocumentCustomerID() snowflake.ID { return i.CustomerID }
func (i InfractionInvoice) DocumentTotal() float64           { return i.TotalAmount }
func (i InfractionInvoice) DocumentStatus() Status           { return i.Status }
