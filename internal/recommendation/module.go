// Package recommendation provides the vendor recommendation bounded context
// module. It scores the active roster against a lead for manual transfer
// decisions; everything it exposes is read-only.
package recommendation

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/recommendation/handler"
	"salesdesk_backend/internal/recommendation/service"
	"salesdesk_backend/platform/logger"
)

// Module is the recommendation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the recommendation module. The collaborator
// reads come from the vendors, leads and handoffs modules.
func NewModule(vendors service.VendorDirectory, leads service.LeadReader, handoffs service.HandoffStats, log *logger.Logger) *Module {
	svc := service.New(vendors, leads, handoffs, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "recommendation"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the recommendation route on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/leads/:id/recommendations", m.handler.Recommend)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
