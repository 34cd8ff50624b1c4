package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/salesinvoice/internal/config"
	"github.com/smallbiznis/salesinvoice/internal/deliverynote"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	"github.com/smallbiznis/salesinvoice/internal/discount"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"github.com/smallbiznis/salesinvoice/internal/invoice"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/internal/masterdata"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"github.com/smallbiznis/salesinvoice/internal/observability"
	obsmiddleware "github.com/smallbiznis/salesinvoice/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/salesinvoice/internal/observability/metrics"
	obstracing "github.com/smallbiznis/salesinvoice/internal/observability/tracing"
	"github.com/smallbiznis/salesinvoice/internal/ratelimit"
	"github.com/smallbiznis/salesinvoice/internal/tax"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"github.com/smallbiznis/salesinvoice/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	masterdata.Module,
	discount.Module,
	tax.Module,
	deliverynote.Module,
	invoice.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.UseJSONNames(v)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
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

type Server struct {
	engine      *gin.Engine
	invoiceSvc  invoicedomain.Service
	noteSvc     notedomain.Service
	masterSvc   masterdomain.Service
	discountSvc discountdomain.Service
	taxSvc      taxdomain.Service
	genLimiter  *ratelimit.GenerationLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	InvoiceSvc  invoicedomain.Service
	NoteSvc     notedomain.Service
	MasterSvc   masterdomain.Service
	DiscountSvc discountdomain.Service
	TaxSvc      taxdomain.Service
	GenLimiter  *ratelimit.GenerationLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics          `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		invoiceSvc:  p.InvoiceSvc,
		noteSvc:     p.NoteSvc,
		masterSvc:   p.MasterSvc,
		discountSvc: p.DiscountSvc,
		taxSvc:      p.TaxSvc,
		genLimiter:  p.GenLimiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Invoices --------
	api.POST("/invoices/generate", s.GenerateRateLimit(), s.GenerateInvoice)
	api.POST("/invoices/generate-bulk", s.GenerateRateLimit(), s.GenerateInvoicesBulk)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/document", s.GetInvoiceDocument)
	api.GET("/invoices/:id/preview", s.PreviewInvoice)
	api.PATCH("/invoices/:id", s.PatchInvoice)
	api.PUT("/invoices/:id/discount-rate", s.OverrideInvoiceDiscount)
	api.DELETE("/invoices/:id", s.DeleteInvoice)

	// -------- Delivery notes --------
	api.POST("/delivery-notes", s.CreateDeliveryNote)
	api.GET("/delivery-notes", s.ListDeliveryNotes)
	api.GET("/delivery-notes/:id", s.GetDeliveryNoteByID)
	api.PATCH("/delivery-notes/:id", s.UpdateDeliveryNote)
	api.DELETE("/delivery-notes/:id", s.DeleteDeliveryNote)

	// -------- Master data --------
	api.POST("/sales-persons", s.CreateSalesPerson)
	api.GET("/sales-persons", s.ListSalesPersons)
	api.GET("/sales-persons/:id", s.GetSalesPersonByID)
	api.PATCH("/sales-persons/:id", s.UpdateSalesPerson)
	api.DELETE("/sales-persons/:id", s.DeleteSalesPerson)

	api.POST("/contractors", s.CreateContractor)
	api.GET("/contractors", s.ListContractors)
	api.PATCH("/contractors/:id", s.UpdateContractor)
	api.DELETE("/contractors/:id", s.DeleteContractor)

	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Rates --------
	api.POST("/discount-tiers", s.CreateDiscountTier)
	api.GET("/discount-tiers", s.ListDiscountTiers)
	api.PATCH("/discount-tiers/:id", s.UpdateDiscountTier)
	api.DELETE("/discount-tiers/:id", s.DeleteDiscountTier)

	api.POST("/tax-rates", s.CreateTaxRate)
	api.GET("/tax-rates", s.ListTaxRates)
	api.PATCH("/tax-rates/:id", s.UpdateTaxRate)
	api.DELETE("/tax-rates/:id", s.DeleteTaxRate)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
