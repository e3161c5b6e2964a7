package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskHandoffSLACheck fires at a handoff's SLA deadline.
const TaskHandoffSLACheck = "handoffs.sla.check"

// TaskNotificationOutboxDue carries a claimed outbox record to the worker.
const TaskNotificationOutboxDue = "notification.outbox.due"

type HandoffSLACheckPayload struct {
	HandoffID string `json:"handoffId"`
}

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
	Kind     string `json:"kind"`
}

func NewHandoffSLACheckTask(payload HandoffSLACheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHandoffSLACheck, data), nil
}

func ParseHandoffSLACheckPayload(task *asynq.Task) (HandoffSLACheckPayload, error) {
	var payload HandoffSLACheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HandoffSLACheckPayload{}, err
	}
	return payload, nil
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}
