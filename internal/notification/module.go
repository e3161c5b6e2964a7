// Package notification is the sink for routing and handoff lifecycle events.
// It writes in-app inbox rows for the affected vendor or qualifier and queues
// outbox records for external delivery channels.
package notification

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/notification/handler"
	"salesdesk_backend/internal/notification/inapp"
	"salesdesk_backend/internal/notification/outbox"
	"salesdesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	subscriber *Subscriber
	outbox     *outbox.Repository
}

// NewModule creates and initializes the notification module and subscribes it
// to the event bus.
func NewModule(pool *pgxpool.Pool, bus events.Bus, vendors VendorReader, leads LeadReader, log *logger.Logger) *Module {
	inboxRepo := inapp.NewRepository(pool)
	inboxSvc := inapp.NewService(inboxRepo)
	outboxRepo := outbox.New(pool)

	sub := NewSubscriber(inboxRepo, outboxRepo, newNameResolver(vendors, leads), log)
	sub.Register(bus)

	return &Module{
		handler:    handler.New(inboxSvc),
		subscriber: sub,
		outbox:     outboxRepo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Outbox returns the outbox repository for the dispatcher worker.
func (m *Module) Outbox() *outbox.Repository {
	return m.outbox
}

// RegisterRoutes mounts the notification inbox routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/notifications")
	group.GET("", m.handler.List)
	group.POST("/read-all", m.handler.MarkAllRead)
	group.POST("/:id/read", m.handler.MarkRead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
