// Package distribution provides the fair distributor bounded context module:
// history-aware round-robin assignment of qualified leads to active vendors.
package distribution

import (
	"salesdesk_backend/internal/distribution/handler"
	"salesdesk_backend/internal/distribution/repository"
	"salesdesk_backend/internal/distribution/service"
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the distribution bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	queue   repository.QueueStore
}

// NewModule creates and initializes the distribution module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	vendors service.VendorDirectory,
	leads service.LeadStore,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	queue := repository.NewQueue(pool)
	history := repository.NewLog(pool)
	svc := service.New(pool, queue, history, vendors, leads, bus, log.WithComponent("distribution"))
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		queue:   queue,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "distribution"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts distribution routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/distribution")
	group.POST("/leads/:id/distribute", m.handler.Distribute)
	group.POST("/leads/:id/enqueue", m.handler.Enqueue)
	group.POST("/run", m.handler.Run)
	group.GET("/preview", m.handler.Preview)
	group.GET("/queue/:leadId", m.handler.QueueEntry)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
