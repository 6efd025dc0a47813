package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/actorctx"
	auditdomain "github.com/openwater/aquabill/internal/audit/domain"
	"github.com/openwater/aquabill/internal/clock"
	"github.com/openwater/aquabill/internal/config"
	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	"github.com/openwater/aquabill/internal/invoice/domain"
	"github.com/openwater/aquabill/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Billing        *config.BillingConfigHolder
	Repo           domain.Repository
	CustomerRepo   customerdomain.Repository
	ConnectionRepo connectiondomain.Repository
	Audit          auditdomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	billing        *config.BillingConfigHolder
	repo           domain.Repository
	customerRepo   customerdomain.Repository
	connectionRepo connectiondomain.Repository
	audit          auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		billing:        p.Billing,
		repo:           p.Repo,
		customerRepo:   p.CustomerRepo,
		connectionRepo: p.ConnectionRepo,
		audit:          p.Audit,
	}
}

// CreateInfraction bills a sanctioned infraction against a connection. The
// infraction variant never settles against prepaid credit; collection is a
// downstream concern.
func (s *Service) CreateInfraction(ctx context.Context, req domain.CreateInfractionRequest) (domain.InfractionInvoice, error) {
	actorID, ok := actorctx.ActorIDFromContext(ctx)
	if !ok {
		return domain.InfractionInvoice{}, domain.ErrMissingActor
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.InfractionInvoice{}, err
	}
	connectionID, err := parseID(req.ConnectionID)
	if err != nil {
		return domain.InfractionInvoice{}, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.InfractionInvoice{}, domain.ErrInvalidDescription
	}
	if req.Amount <= 0 {
		return domain.InfractionInvoice{}, domain.ErrInvalidAmount
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.InfractionInvoice{}, err
	}
	if customer == nil {
		return domain.InfractionInvoice{}, domain.ErrNotFound
	}

	connection, err := s.connectionRepo.FindByID(ctx, s.db, connectionID)
	if err != nil {
		return domain.InfractionInvoice{}, err
	}
	if connection == nil {
		return domain.InfractionInvoice{}, domain.ErrNotFound
	}
	if connection.CustomerID != customerID {
		return domain.InfractionInvoice{}, domain.ErrOwnershipMismatch
	}

	billing := s.billing.Get()
	now := s.clock.Now()

	base := money.Round(req.Amount)
	tax := money.Round(base * billing.TaxRate)
	total := money.Round(base + tax)

	invoice := domain.InfractionInvoice{
		ID:           s.genID.Generate(),
		CustomerID:   customerID,
		ConnectionID: connectionID,
		Description:  description,
		BaseAmount:   base,
		TaxAmount:    tax,
		TotalAmount:  total,
		Status:       domain.StatusPending,
		DueDate:      now.AddDate(0, 0, billing.DueDateDays),
		CreatedBy:    actorID,
		CreatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertInfraction(ctx, tx, &invoice); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			Action:     auditdomain.ActionCreate,
			EntityType: "infraction_invoice",
			EntityID:   invoice.ID.String(),
			ActorID:    actorID,
			After:      invoice,
		})
	})
	if err != nil {
		return domain.InfractionInvoice{}, err
	}

	s.log.Info("created infraction invoice",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Float64("total_amount", invoice.TotalAmount),
	)

	return invoice, nil
}

func (s *Service) ListByCustomer(ctx context.Context, req domain.ListInvoicesRequest) ([]domain.ConsumptionInvoice, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return nil, err
	}

	var status domain.Status
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status = domain.Status(raw)
		switch status {
		case domain.StatusPending, domain.StatusPaid, domain.StatusPartiallyPaid,
			domain.StatusOverdue, domain.StatusCancelled:
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListConsumptionByCustomer(ctx, s.db, customerID, domain.ListFilter{
		Status: status,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.ConsumptionInvoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return invoices, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
