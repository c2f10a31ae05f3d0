package tasks

import (
	"context"
	"errors"
	"log/slog"
)

// SyncArticlesTask wraps the syncer for scheduled execution. A sync that
// is already running is skipped, not retried.
type SyncArticlesTask struct {
	Task
	syncer *Syncer
}

func NewSyncArticlesTask(syncer *Syncer) *SyncArticlesTask {
	return &SyncArticlesTask{
		Task:   NewTask(TaskTypeSyncArticles),
		syncer: syncer,
	}
}

func (t *SyncArticlesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	run, err := t.syncer.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			slog.Debug("Sync already running, skipping scheduled sync")
			return nil
		}
		return err
	}

	slog.Info("Task completed",
		"type", "SyncArticles",
		"run_id", run.ID,
		"duration", t.GetDuration(),
		"fetched", run.Fetched,
		"transformed", run.Transformed,
		"saved", run.Saved,
		"skipped", len(run.Errors))

	return nil
}
