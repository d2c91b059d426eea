package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskPoolEscalationSweep runs one escalation sweep.
const TaskPoolEscalationSweep = "pool.escalation.sweep"

type PoolEscalationSweepPayload struct {
	Source      string    `json:"source"`
	RequestedAt time.Time `json:"requestedAt"`
}

func NewPoolEscalationSweepTask(payload PoolEscalationSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPoolEscalationSweep, data), nil
}

func ParsePoolEscalationSweepPayload(task *asynq.Task) (PoolEscalationSweepPayload, error) {
	var payload PoolEscalationSweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PoolEscalationSweepPayload{}, err
	}
	return payload, nil
}
