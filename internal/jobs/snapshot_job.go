package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/hibiken/asynq"

	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type SnapshotRunner interface {
	Run(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error)
}

type SnapshotJob struct {
	runner SnapshotRunner
	logger ports.Logger
}

func NewSnapshotJob(runner SnapshotRunner, logger ports.Logger) *SnapshotJob {
	return &SnapshotJob{runner: runner, logger: logger}
}

// Handle runs one snapshot inside its own X-Ray segment, since worker tasks
// have no incoming request to inherit one from. Malformed payloads and
// rejected dates are not retried; store failures are.
func (j *SnapshotJob) Handle(ctx context.Context, task *asynq.Task) (err error) {
	if j == nil || j.runner == nil {
		return errors.New("payroll snapshot: runner not configured")
	}
	ctx, seg := xray.BeginSegment(ctx, "payroll-snapshot")
	defer func() { seg.Close(err) }()

	var payload SnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		j.logger.Error(ctx, "payroll snapshot payload rejected", "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	var date time.Time
	if payload.Date != "" {
		d, err := time.Parse(dateLayout, payload.Date)
		if err != nil {
			j.logger.Error(ctx, "payroll snapshot date rejected", "date", payload.Date)
			return fmt.Errorf("parse date %q: %w", payload.Date, asynq.SkipRetry)
		}
		date = d
	}
	snapshot, err := j.runner.Run(ctx, date)
	if errors.Is(err, domain.ErrInvalidInput) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		j.logger.Warn(ctx, "payroll snapshot failed, will retry", "error", err)
		return err
	}
	j.logger.Info(ctx, "payroll snapshot job done",
		"date", snapshot.Date.Format(dateLayout), "headcount", snapshot.Headcount)
	return nil
}
