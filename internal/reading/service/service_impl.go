package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/actorctx"
	auditdomain "github.com/openwater/aquabill/internal/audit/domain"
	"github.com/openwater/aquabill/internal/clock"
	"github.com/openwater/aquabill/internal/config"
	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
	"github.com/openwater/aquabill/internal/credit"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	"github.com/openwater/aquabill/internal/metrics"
	paymentdomain "github.com/openwater/aquabill/internal/payment/domain"
	"github.com/openwater/aquabill/internal/reading/domain"
	sequencedomain "github.com/openwater/aquabill/internal/sequence/domain"
	systemdomain "github.com/openwater/aquabill/internal/system/domain"
	"github.com/openwater/aquabill/internal/tariff"
	"github.com/openwater/aquabill/pkg/db"
	"github.com/openwater/aquabill/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// readingNamespace is the allocator namespace for receipt codes.
const readingNamespace = "reading"

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Billing        *config.BillingConfigHolder
	Metrics        *metrics.Ingest
	Repo           domain.Repository
	CustomerRepo   customerdomain.Repository
	ConnectionRepo connectiondomain.Repository
	SystemRepo     systemdomain.Repository
	InvoiceRepo    invoicedomain.Repository
	PaymentRepo    paymentdomain.Repository
	Allocator      sequencedomain.Allocator
	Audit          auditdomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	billing        *config.BillingConfigHolder
	metrics        *metrics.Ingest
	repo           domain.Repository
	customerRepo   customerdomain.Repository
	connectionRepo connectiondomain.Repository
	systemRepo     systemdomain.Repository
	invoiceRepo    invoicedomain.Repository
	paymentRepo    paymentdomain.Repository
	allocator      sequencedomain.Allocator
	audit          auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("reading.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		billing:        p.Billing,
		metrics:        p.Metrics,
		repo:           p.Repo,
		customerRepo:   p.CustomerRepo,
		connectionRepo: p.ConnectionRepo,
		systemRepo:     p.SystemRepo,
		invoiceRepo:    p.InvoiceRepo,
		paymentRepo:    p.PaymentRepo,
		allocator:      p.Allocator,
		audit:          p.Audit,
	}
}

// Submit ingests one meter reading and produces the full billing artifact
// set atomically: the reading, its consumption invoice, the prepaid payment
// when credit covered any of it, the updated customer balance and the audit
// trail. Any failure past validation rolls everything back, including the
// allocated receipt code.
func (s *Service) Submit(ctx context.Context, req domain.SubmitReadingRequest) (domain.SubmitReadingResult, error) {
	actorID, ok := actorctx.ActorIDFromContext(ctx)
	if !ok {
		return domain.SubmitReadingResult{}, domain.ErrMissingActor
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.SubmitReadingResult{}, err
	}
	connectionID, err := parseID(req.ConnectionID)
	if err != nil {
		return domain.SubmitReadingResult{}, err
	}
	if req.CurrentReading < 0 || math.IsNaN(req.CurrentReading) || math.IsInf(req.CurrentReading, 0) {
		return domain.SubmitReadingResult{}, domain.ErrInvalidReading
	}

	billing := s.billing.Get()
	started := time.Now()

	var (
		result   domain.SubmitReadingResult
		attempts int
	)

	err = db.RunInTransaction(ctx, s.db, billing.TxMaxAttempts,
		time.Duration(billing.TxBackoffMs)*time.Millisecond,
		func(tx *gorm.DB) error {
			attempts++
			result = domain.SubmitReadingResult{}

			// Lock the customer row first so concurrent submissions for the
			// same customer serialize on the prepaid balance.
			customer, err := s.customerRepo.FindByIDForUpdate(ctx, tx, customerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domain.ErrCustomerNotFound
			}

			connection, err := s.connectionRepo.FindByID(ctx, tx, connectionID)
			if err != nil {
				return err
			}
			if connection == nil {
				return domain.ErrConnectionNotFound
			}
			if connection.CustomerID != customerID {
				return domain.ErrOwnershipMismatch
			}
			if !connection.Active {
				return domain.ErrInactiveConnection
			}

			category, err := connection.TariffCategory()
			if err != nil {
				return err
			}

			system, err := s.systemRepo.FindByID(ctx, tx, connection.SystemID)
			if err != nil {
				return err
			}
			if system == nil {
				return domain.ErrSystemNotFound
			}

			baseline := connection.InitialReading
			if latest, err := s.repo.FindLatestByConnection(ctx, tx, connectionID); err != nil {
				return err
			} else if latest != nil {
				baseline = latest.CurrentReading
			}
			if req.CurrentReading < baseline {
				return domain.ErrReadingRegression
			}
			consumption := money.Round(req.CurrentReading - baseline)

			code, err := s.allocator.Next(ctx, tx, readingNamespace)
			if err != nil {
				return err
			}

			base, err := tariff.ComputeBaseAmount(category, consumption, system.RateSchedule())
			if err != nil {
				return err
			}
			tax := money.Round(base * billing.TaxRate)
			total := money.Round(base + tax)

			settlement := credit.Settlement{NewBalance: customer.AvailableCredit}
			if total > 0 {
				settlement, err = credit.Settle(total, customer.AvailableCredit)
				if err != nil {
					return err
				}
			}

			now := s.clock.Now()

			reading := domain.Reading{
				ID:              s.genID.Generate(),
				Code:            code,
				CustomerID:      customerID,
				ConnectionID:    connectionID,
				Date:            now,
				PreviousReading: baseline,
				CurrentReading:  req.CurrentReading,
				Consumption:     consumption,
				ImagePath:       strings.TrimSpace(req.ImagePath),
				Notes:           strings.TrimSpace(req.Notes),
				CreatedBy:       actorID,
				CreatedAt:       now,
			}
			if err := s.repo.Insert(ctx, tx, &reading); err != nil {
				return err
			}

			status := invoicedomain.StatusPartiallyPaid
			if settlement.RemainingDebt == 0 {
				status = invoicedomain.StatusPaid
			}
			invoice := invoicedomain.ConsumptionInvoice{
				ID:            s.genID.Generate(),
				CustomerID:    customerID,
				ConnectionID:  connectionID,
				ReadingID:     reading.ID,
				BaseAmount:    base,
				TaxAmount:     tax,
				TotalAmount:   total,
				CreditApplied: settlement.CreditUsed,
				RemainingDebt: settlement.RemainingDebt,
				Status:        status,
				DueDate:       now.AddDate(0, 0, billing.DueDateDays),
				CreatedBy:     actorID,
				CreatedAt:     now,
			}
			if err := s.invoiceRepo.InsertConsumption(ctx, tx, &invoice); err != nil {
				return err
			}

			var payment *paymentdomain.Payment
			if settlement.CreditUsed > 0 {
				payment = &paymentdomain.Payment{
					ID:         s.genID.Generate(),
					CustomerID: customerID,
					InvoiceID:  invoice.ID,
					Amount:     settlement.CreditUsed,
					Date:       now,
					Note:       "prepaid credit auto-settlement",
					CreatedAt:  now,
				}
				if err := s.paymentRepo.Insert(ctx, tx, payment); err != nil {
					return err
				}
				if err := s.customerRepo.UpdateAvailableCredit(ctx, tx, customerID, settlement.NewBalance); err != nil {
					return err
				}
			}

			if err := s.audit.Record(ctx, tx, auditdomain.Entry{
				Action:     auditdomain.ActionCreate,
				EntityType: "reading",
				EntityID:   reading.ID.String(),
				ActorID:    actorID,
				After:      reading,
			}); err != nil {
				return err
			}
			if err := s.audit.Record(ctx, tx, auditdomain.Entry{
				Action:     auditdomain.ActionCreate,
				EntityType: "consumption_invoice",
				EntityID:   invoice.ID.String(),
				ActorID:    actorID,
				After:      invoice,
			}); err != nil {
				return err
			}
			if payment != nil {
				if err := s.audit.Record(ctx, tx, auditdomain.Entry{
					Action:     auditdomain.ActionCreate,
					EntityType: "payment",
					EntityID:   payment.ID.String(),
					ActorID:    actorID,
					After:      payment,
				}); err != nil {
					return err
				}
				before := *customer
				after := before
				after.AvailableCredit = settlement.NewBalance
				if err := s.audit.Record(ctx, tx, auditdomain.Entry{
					Action:     auditdomain.ActionUpdate,
					EntityType: "customer",
					EntityID:   customerID.String(),
					ActorID:    actorID,
					Before:     before,
					After:      after,
				}); err != nil {
					return err
				}
			}

			result = domain.SubmitReadingResult{
				Reading: reading,
				Invoice: invoice,
				Payment: payment,
			}
			return nil
		})

	s.metrics.IngestDuration.Observe(time.Since(started).Seconds())
	if attempts > 1 {
		s.metrics.TxRetriesTotal.Add(float64(attempts - 1))
	}
	if err != nil {
		s.metrics.ReadingsTotal.WithLabelValues("failure").Inc()
		return domain.SubmitReadingResult{}, err
	}
	s.metrics.ReadingsTotal.WithLabelValues("success").Inc()
	if result.Payment != nil {
		s.metrics.CreditSettled.Inc()
	}

	s.log.Info("ingested reading",
		zap.Int64("code", result.Reading.Code),
		zap.String("customer_id", customerID.String()),
		zap.String("connection_id", connectionID.String()),
		zap.Float64("consumption", result.Reading.Consumption),
		zap.Float64("total_amount", result.Invoice.TotalAmount),
		zap.Float64("credit_applied", result.Invoice.CreditApplied),
		zap.String("status", string(result.Invoice.Status)),
	)

	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Reading, error) {
	readingID, err := parseID(id)
	if err != nil {
		return domain.Reading{}, err
	}
	reading, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return domain.Reading{}, err
	}
	if reading == nil {
		return domain.Reading{}, domain.ErrNotFound
	}
	return *reading, nil
}

func (s *Service) ListByConnection(ctx context.Context, req domain.ListReadingsRequest) ([]domain.Reading, error) {
	connectionID, err := parseID(req.ConnectionID)
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByConnection(ctx, s.db, connectionID, pageSize)
	if err != nil {
		return nil, err
	}

	readings := make([]domain.Reading, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		readings = append(readings, *item)
	}
	return readings, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
