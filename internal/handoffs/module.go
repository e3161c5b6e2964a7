// Package handoffs provides the handoff lifecycle bounded context module.
// A handoff is the explicit transfer of a qualified lead from a qualifier to
// a vendor, tracked through accept/reject, first contact and feedback under
// an urgency-derived SLA.
package handoffs

import (
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/handoffs/handler"
	"salesdesk_backend/internal/handoffs/repository"
	"salesdesk_backend/internal/handoffs/service"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the handoff lifecycle bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the handoffs module with all its
// dependencies. The scheduler may be nil, which disables deferred SLA checks.
func NewModule(pool *pgxpool.Pool, bus events.Bus, scheduler service.SLAScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, scheduler, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "handoffs"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access by sibling modules.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts handoff lifecycle routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/handoffs")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.ListByQualifier)
	group.GET("/pending", m.handler.Pending)
	group.GET("/overdue", m.handler.Overdue)
	group.GET("/:id", m.handler.GetByID)
	group.POST("/:id/accept", m.handler.Accept)
	group.POST("/:id/reject", m.handler.Reject)
	group.POST("/:id/first-contact", m.handler.FirstContact)
	group.POST("/:id/feedback", m.handler.Feedback)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
