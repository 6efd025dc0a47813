package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/connection/domain"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	systemdomain "github.com/openwater/aquabill/internal/system/domain"
	"github.com/openwater/aquabill/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	SystemRepo   systemdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	systemRepo   systemdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("connection.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		systemRepo:   p.SystemRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateConnectionRequest) (domain.Connection, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Connection{}, err
	}
	systemID, err := parseID(req.SystemID)
	if err != nil {
		return domain.Connection{}, err
	}

	category, err := tariff.ParseCategory(req.Category)
	if err != nil {
		return domain.Connection{}, domain.ErrInvalidCategory
	}
	if req.InitialReading < 0 {
		return domain.Connection{}, domain.ErrInvalidBaseline
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Connection{}, err
	}
	if customer == nil {
		return domain.Connection{}, domain.ErrCustomerMissing
	}

	system, err := s.systemRepo.FindByID(ctx, s.db, systemID)
	if err != nil {
		return domain.Connection{}, err
	}
	if system == nil {
		return domain.Connection{}, domain.ErrSystemMissing
	}

	now := time.Now().UTC()
	connection := domain.Connection{
		ID:             s.genID.Generate(),
		CustomerID:     customerID,
		SystemID:       systemID,
		Category:       string(category),
		InitialReading: req.InitialReading,
		Address:        strings.TrimSpace(req.Address),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &connection); err != nil {
		return domain.Connection{}, err
	}

	return connection, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Connection, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Connection{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Connection{}, err
	}
	if item == nil {
		return domain.Connection{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Connection, error) {
	parsed, err := parseID(customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByCustomer(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}

	connections := make([]domain.Connection, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		connections = append(connections, *item)
	}

	return connections, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
