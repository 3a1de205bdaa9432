// Package jobs runs scheduled background work on asynq.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"
	// TaskPayrollSnapshot computes and stores the daily payroll snapshot.
	TaskPayrollSnapshot = "payroll:snapshot"
)

const dateLayout = "2006-01-02"

// SnapshotPayload names the day to snapshot. An empty date means the day the
// task runs, which is what the cron registration uses.
type SnapshotPayload struct {
	Date string `json:"date,omitempty"`
}

func NewSnapshotTask(date time.Time) (*asynq.Task, error) {
	var payload SnapshotPayload
	if !date.IsZero() {
		payload.Date = date.UTC().Format(dateLayout)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollSnapshot, body, asynq.Queue(QueueDefault)), nil
}
