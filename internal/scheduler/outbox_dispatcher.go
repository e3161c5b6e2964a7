package scheduler

import (
	"context"
	"time"

	"salesdesk_backend/internal/notification/outbox"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultDispatchInterval = 2 * time.Second
	dispatchBatchSize       = 50
)

// OutboxDispatcher periodically claims due outbox records and enqueues them
// as worker tasks. Claiming uses SKIP LOCKED, so multiple dispatchers can run
// without double-enqueueing.
type OutboxDispatcher struct {
	client   *asynq.Client
	queue    string
	repo     *outbox.Repository
	log      *logger.Logger
	interval time.Duration
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger, interval time.Duration) (*OutboxDispatcher, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	if interval <= 0 {
		interval = defaultDispatchInterval
	}

	return &OutboxDispatcher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		repo:     outbox.New(pool),
		log:      log,
		interval: interval,
	}, nil
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, dispatchBatchSize)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
				OutboxID: rec.ID.String(),
				Kind:     rec.Kind,
			})
			if err != nil {
				msg := err.Error()
				_ = d.repo.MarkPending(ctx, rec.ID, &msg)
				continue
			}

			if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
				msg := err.Error()
				_ = d.repo.MarkPending(ctx, rec.ID, &msg)
			}
		}
	}
}
