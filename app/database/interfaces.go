package database

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an operation references a nonexistent article.
var ErrNotFound = errors.New("article not found")

// ErrInconsistentState signals a persisted row violating the selection
// invariant (selected without a selection timestamp). It points at a
// persistence-layer bug and fails the single request that observed it.
var ErrInconsistentState = errors.New("inconsistent selection state")

// BulkSelectResult reports the outcome of a bulk selection. Valid ids are
// applied, unknown ids are collected instead of failing the batch.
type BulkSelectResult struct {
	SelectedCount int
	SelectedIDs   []string
	NotFound      []string
}

type ArticleRepository interface {
	GetArticle(id string) (*Article, error)
	ListArticles(filter ArticleFilter) ([]Article, int, error)
	GetUnselected(minScore int) ([]Article, error)
	GetSelected() ([]Article, error)

	UpsertArticle(article Article) error
	UpsertArticles(articles []Article) (int, error)

	SelectArticle(id string, now time.Time) (*Article, error)
	DeselectArticle(id string) (*Article, error)
	SelectArticles(ids []string, now time.Time) (*BulkSelectResult, error)
	ClearSelections() (int, error)

	CountArticles(selectedOnly bool) (int, error)
	CountBySector() (map[string]int, error)
	CountByImpactScore() (map[int]int, error)
	CountByStrategicTag() (map[string]int, error)
}

type SyncRunRepository interface {
	RecordRun(run SyncRun) error
	GetLatestRun() (*SyncRun, error)
}
