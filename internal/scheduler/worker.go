package scheduler

import (
	"context"
	"fmt"

	"salesdesk_backend/internal/notification/outbox"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SLAChecker re-evaluates a handoff at its deadline. Implemented by the
// handoff service.
type SLAChecker interface {
	CheckSLA(ctx context.Context, handoffID uuid.UUID) error
}

// OutboxStore is the outbox state machine the worker drives during delivery.
type OutboxStore interface {
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

// Worker consumes the task queue: SLA checks at handoff deadlines and due
// outbox deliveries.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	checker SLAChecker
	outbox  OutboxStore
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, checker SLAChecker, out OutboxStore, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		checker: checker,
		outbox:  out,
		log:     log,
	}

	mux.HandleFunc(TaskHandoffSLACheck, w.handleSLACheck)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleOutboxDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSLACheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseHandoffSLACheckPayload(task)
	if err != nil {
		return err
	}

	handoffID, err := uuid.Parse(payload.HandoffID)
	if err != nil {
		return err
	}

	return w.checker.CheckSLA(ctx, handoffID)
}

// handleOutboxDue walks a claimed record through the delivery state machine.
// The external channel itself is stubbed here; the record and its state
// transitions are the integration point for a real transport.
func (w *Worker) handleOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	if err := w.outbox.MarkProcessing(ctx, outboxID); err != nil {
		return err
	}

	if err := w.deliver(ctx, payload); err != nil {
		if markErr := w.outbox.MarkFailed(ctx, outboxID, err.Error()); markErr != nil {
			w.log.Warn("outbox mark failed errored", "outboxId", outboxID, "error", markErr)
		}
		return err
	}

	return w.outbox.MarkSucceeded(ctx, outboxID)
}

func (w *Worker) deliver(_ context.Context, payload NotificationOutboxDuePayload) error {
	w.log.Info("outbox record delivered", "outboxId", payload.OutboxID, "kind", payload.Kind)
	return nil
}

// Compile-time check that the dispatcher feeds records this worker accepts.
var _ OutboxStore = (*outbox.Repository)(nil)
