package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openwater/aquabill/internal/audit"
	auditdomain "github.com/openwater/aquabill/internal/audit/domain"
	"github.com/openwater/aquabill/internal/config"
	"github.com/openwater/aquabill/internal/connection"
	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
	"github.com/openwater/aquabill/internal/customer"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	"github.com/openwater/aquabill/internal/invoice"
	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	"github.com/openwater/aquabill/internal/metrics"
	"github.com/openwater/aquabill/internal/migration"
	"github.com/openwater/aquabill/internal/payment"
	paymentdomain "github.com/openwater/aquabill/internal/payment/domain"
	"github.com/openwater/aquabill/internal/ratelimit"
	"github.com/openwater/aquabill/internal/reading"
	readingdomain "github.com/openwater/aquabill/internal/reading/domain"
	"github.com/openwater/aquabill/internal/sequence"
	"github.com/openwater/aquabill/internal/system"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	metrics.Module,
	sequence.Module,
	audit.Module,
	customer.Module,
	system.Module,
	connection.Module,
	invoice.Module,
	payment.Module,
	reading.Module,
	ratelimit.Module,
	migration.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type Server struct {
	log     *zap.Logger
	limiter *ratelimit.SubmitLimiter

	customerSvc   customerdomain.Service
	connectionSvc connectiondomain.Service
	readingSvc    readingdomain.Service
	invoiceSvc    invoicedomain.Service
	paymentSvc    paymentdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Engine  *gin.Engine
	Log     *zap.Logger
	Limiter *ratelimit.SubmitLimiter

	CustomerSvc   customerdomain.Service
	ConnectionSvc connectiondomain.Service
	ReadingSvc    readingdomain.Service
	InvoiceSvc    invoicedomain.Service
	PaymentSvc    paymentdomain.Service
	AuditSvc      auditdomain.Service
}

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		log:     p.Log.Named("http.server"),
		limiter: p.Limiter,

		customerSvc:   p.CustomerSvc,
		connectionSvc: p.ConnectionSvc,
		readingSvc:    p.ReadingSvc,
		invoiceSvc:    p.InvoiceSvc,
		paymentSvc:    p.PaymentSvc,
		auditSvc:      p.AuditSvc,
	}
	s.registerRoutes(p.Engine)
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.Use(ActorMiddleware())

	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomerByID)
	v1.GET("/customers/:id/connections", s.ListCustomerConnections)
	v1.GET("/customers/:id/invoices", s.ListCustomerInvoices)
	v1.GET("/customers/:id/payments", s.ListCustomerPayments)

	v1.POST("/connections", s.CreateConnection)
	v1.GET("/connections/:id", s.GetConnectionByID)
	v1.GET("/connections/:id/readings", s.ListConnectionReadings)

	v1.POST("/readings", s.SubmitRateLimit(), s.SubmitReading)
	v1.GET("/readings/:id", s.GetReadingByID)

	v1.POST("/invoices/infractions", s.CreateInfractionInvoice)

	v1.GET("/audit-logs", s.ListAuditLogs)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
