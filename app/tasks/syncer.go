package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"purpleletter/app/curation"
	"purpleletter/app/database"
	"purpleletter/app/source"
)

// ErrSyncInProgress is returned when a sync is requested while another one
// is still running. Only one sync runs at a time.
var ErrSyncInProgress = errors.New("sync already in progress")

// Sync run states as persisted in sync_runs.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Syncer runs the ingestion pipeline: fetch raw records, transform and
// score them, persist the batch, and record the run outcome. It is shared
// between the scheduler and the API trigger endpoint.
type Syncer struct {
	source      source.Source
	transformer *curation.Transformer
	articles    database.ArticleRepository
	runs        database.SyncRunRepository
	limit       int
	mu          sync.Mutex
}

func NewSyncer(src source.Source, transformer *curation.Transformer,
	articles database.ArticleRepository, runs database.SyncRunRepository, limit int) *Syncer {
	return &Syncer{
		source:      src,
		transformer: transformer,
		articles:    articles,
		runs:        runs,
		limit:       limit,
	}
}

// Run executes one sync. A second concurrent call fails fast with
// ErrSyncInProgress instead of queueing behind the first.
func (s *Syncer) Run(ctx context.Context) (*database.SyncRun, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	run := database.SyncRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Errors:    []string{},
		Status:    SyncStatusRunning,
	}
	if err := s.runs.RecordRun(run); err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}

	raw, err := s.source.Fetch(ctx, s.limit)
	if err != nil {
		run.Errors = append(run.Errors, err.Error())
		s.finishRun(&run, SyncStatusFailed)
		return &run, fmt.Errorf("failed to fetch from %s: %w", s.source.Name(), err)
	}
	run.Fetched = len(raw)

	now := time.Now().UTC()
	articles := make([]database.Article, 0, len(raw))
	for _, record := range raw {
		article, err := s.transformer.Transform(record, now)
		if err != nil {
			var malformed *curation.MalformedRecordError
			if errors.As(err, &malformed) {
				slog.Warn("Skipping malformed record", "id", malformed.ArticleID, "reason", malformed.Reason)
				run.Errors = append(run.Errors, err.Error())
				continue
			}
			run.Errors = append(run.Errors, err.Error())
			s.finishRun(&run, SyncStatusFailed)
			return &run, fmt.Errorf("failed to transform record: %w", err)
		}
		articles = append(articles, article)
	}
	run.Transformed = len(articles)
	run.Scored = len(articles)

	saved, err := s.articles.UpsertArticles(articles)
	if err != nil {
		run.Errors = append(run.Errors, err.Error())
		s.finishRun(&run, SyncStatusFailed)
		return &run, fmt.Errorf("failed to save articles: %w", err)
	}
	run.Saved = saved

	s.finishRun(&run, SyncStatusCompleted)
	return &run, nil
}

func (s *Syncer) finishRun(run *database.SyncRun, status string) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = status

	if err := s.runs.RecordRun(*run); err != nil {
		slog.Error("Failed to record sync run outcome", "run_id", run.ID, "error", err)
	}
}
