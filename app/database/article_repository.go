package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamps are stored as RFC3339 UTC strings so that lexicographic
// ordering in sqlite matches chronological ordering.
const timeLayout = time.RFC3339

var _ ArticleRepository = (*ArticleRepositoryImpl)(nil)

type ArticleRepositoryImpl struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepositoryImpl {
	return &ArticleRepositoryImpl{db: db}
}

const articleColumns = `id, title, summary, link, source, published_at, image_url,
	primary_sector, secondary_sector, subcategories,
	market_relevance, business_relevance, tech_shift, urgency, ecommerce_relevance,
	impact_score, strategic_tag, matched_keywords, why_it_matters, implication,
	selected, selected_at, original_score, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var publishedAt, createdAt, updatedAt string
	var selectedAt sql.NullString
	var originalScore sql.NullInt64
	var subcategories, matchedKeywords string

	err := row.Scan(
		&a.ID, &a.Title, &a.Summary, &a.Link, &a.Source, &publishedAt, &a.ImageURL,
		&a.PrimarySector, &a.SecondarySector, &subcategories,
		&a.MarketRelevance, &a.BusinessRelevance, &a.TechShift, &a.Urgency, &a.EcommerceRelevance,
		&a.ImpactScore, &a.StrategicTag, &matchedKeywords, &a.WhyItMatters, &a.Implication,
		&a.Selected, &selectedAt, &originalScore, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.PublishedAt, err = time.Parse(timeLayout, publishedAt); err != nil {
		return nil, fmt.Errorf("failed to parse published_at: %w", err)
	}
	if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if selectedAt.Valid {
		t, err := time.Parse(timeLayout, selectedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse selected_at: %w", err)
		}
		a.SelectedAt = &t
	}
	if originalScore.Valid {
		score := int(originalScore.Int64)
		a.OriginalScore = &score
	}

	if err := json.Unmarshal([]byte(subcategories), &a.Subcategories); err != nil {
		return nil, fmt.Errorf("failed to decode subcategories: %w", err)
	}
	if err := json.Unmarshal([]byte(matchedKeywords), &a.MatchedKeywords); err != nil {
		return nil, fmt.Errorf("failed to decode matched keywords: %w", err)
	}

	// Selection invariant: selected and selected_at move together.
	if a.Selected && a.SelectedAt == nil {
		return nil, fmt.Errorf("%w: article %s is selected without selected_at", ErrInconsistentState, a.ID)
	}
	if !a.Selected && a.SelectedAt != nil {
		return nil, fmt.Errorf("%w: article %s has selected_at while unselected", ErrInconsistentState, a.ID)
	}

	return &a, nil
}

func (r *ArticleRepositoryImpl) GetArticle(id string) (*Article, error) {
	row := r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// ListArticles returns a page of articles matching the filter plus the total
// match count (ignoring limit/offset).
func (r *ArticleRepositoryImpl) ListArticles(filter ArticleFilter) ([]Article, int, error) {
	var conditions []string
	var args []interface{}

	if filter.MinScore > 0 {
		conditions = append(conditions, "impact_score >= ?")
		args = append(args, filter.MinScore)
	}
	if filter.Sector != "" {
		conditions = append(conditions, "(primary_sector = ? OR secondary_sector = ?)")
		args = append(args, filter.Sector, filter.Sector)
	}
	if filter.StrategicTag != "" {
		conditions = append(conditions, "strategic_tag = ?")
		args = append(args, filter.StrategicTag)
	}
	if filter.SelectedOnly {
		conditions = append(conditions, "selected = 1")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM articles"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + where +
		` ORDER BY impact_score DESC, published_at DESC, id ASC`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	articles, err := r.queryArticles(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// GetUnselected returns the recommendation candidate set: every unselected
// article at or above the minimum impact score.
func (r *ArticleRepositoryImpl) GetUnselected(minScore int) ([]Article, error) {
	return r.queryArticles(`SELECT `+articleColumns+` FROM articles
		WHERE selected = 0 AND impact_score >= ?
		ORDER BY impact_score DESC, published_at DESC, id ASC`, minScore)
}

func (r *ArticleRepositoryImpl) GetSelected() ([]Article, error) {
	return r.queryArticles(`SELECT ` + articleColumns + ` FROM articles
		WHERE selected = 1
		ORDER BY impact_score DESC, published_at DESC, id ASC`)
}

func (r *ArticleRepositoryImpl) queryArticles(query string, args ...interface{}) ([]Article, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// UpsertArticle inserts a scored article or refreshes an existing one. All
// scoring fields are replaced together; selection state and created_at are
// owned by the selector and never touched here.
func (r *ArticleRepositoryImpl) UpsertArticle(article Article) error {
	return r.upsertArticle(r.db.DB, article, time.Now().UTC())
}

// UpsertArticles stores a sync batch in a single transaction so a concurrent
// read never observes a half-written scoring pass.
func (r *ArticleRepositoryImpl) UpsertArticles(articles []Article) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	saved := 0
	for _, article := range articles {
		if err := r.upsertArticle(tx, article, now); err != nil {
			return 0, err
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert batch: %w", err)
	}
	return saved, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *ArticleRepositoryImpl) upsertArticle(e execer, article Article, now time.Time) error {
	subcategories, err := json.Marshal(emptyIfNil(article.Subcategories))
	if err != nil {
		return fmt.Errorf("failed to encode subcategories: %w", err)
	}
	matchedKeywords, err := json.Marshal(emptyIfNil(article.MatchedKeywords))
	if err != nil {
		return fmt.Errorf("failed to encode matched keywords: %w", err)
	}

	_, err = e.Exec(`
		INSERT INTO articles (
			id, title, summary, link, source, published_at, image_url,
			primary_sector, secondary_sector, subcategories,
			market_relevance, business_relevance, tech_shift, urgency, ecommerce_relevance,
			impact_score, strategic_tag, matched_keywords, why_it_matters, implication,
			selected, selected_at, original_score, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, NULL, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			link = excluded.link,
			source = excluded.source,
			published_at = excluded.published_at,
			image_url = excluded.image_url,
			primary_sector = excluded.primary_sector,
			secondary_sector = excluded.secondary_sector,
			subcategories = excluded.subcategories,
			market_relevance = excluded.market_relevance,
			business_relevance = excluded.business_relevance,
			tech_shift = excluded.tech_shift,
			urgency = excluded.urgency,
			ecommerce_relevance = excluded.ecommerce_relevance,
			impact_score = excluded.impact_score,
			strategic_tag = excluded.strategic_tag,
			matched_keywords = excluded.matched_keywords,
			why_it_matters = excluded.why_it_matters,
			implication = excluded.implication,
			updated_at = excluded.updated_at
	`, article.ID, article.Title, article.Summary, article.Link, article.Source,
		article.PublishedAt.UTC().Format(timeLayout), article.ImageURL,
		article.PrimarySector, article.SecondarySector, string(subcategories),
		article.MarketRelevance, article.BusinessRelevance, article.TechShift,
		article.Urgency, article.EcommerceRelevance,
		article.ImpactScore, article.StrategicTag, string(matchedKeywords),
		article.WhyItMatters, article.Implication,
		now.Format(timeLayout), now.Format(timeLayout))

	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", article.ID, err)
	}
	return nil
}

// SelectArticle marks an article for the newsletter. Selecting an already
// selected article is a no-op that preserves the original selection
// timestamp and score snapshot.
func (r *ArticleRepositoryImpl) SelectArticle(id string, now time.Time) (*Article, error) {
	// The single UPDATE keeps selected, selected_at and original_score in
	// step; the WHERE clause makes repeated calls no-ops.
	_, err := r.db.Exec(`
		UPDATE articles
		SET selected = 1, selected_at = ?, original_score = impact_score, updated_at = ?
		WHERE id = ? AND selected = 0
	`, now.UTC().Format(timeLayout), now.UTC().Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to select article: %w", err)
	}

	return r.GetArticle(id)
}

func (r *ArticleRepositoryImpl) DeselectArticle(id string) (*Article, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE articles
		SET selected = 0, selected_at = NULL, original_score = NULL, updated_at = ?
		WHERE id = ? AND selected = 1
	`, now.Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to deselect article: %w", err)
	}

	return r.GetArticle(id)
}

// SelectArticles applies a bulk selection in one transaction. Unknown ids
// are reported instead of failing the batch; already selected ids count as
// selected without refreshing their timestamps.
func (r *ArticleRepositoryImpl) SelectArticles(ids []string, now time.Time) (*BulkSelectResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &BulkSelectResult{}
	nowStr := now.UTC().Format(timeLayout)

	for _, id := range ids {
		var selected bool
		err := tx.QueryRow(`SELECT selected FROM articles WHERE id = ?`, id).Scan(&selected)
		if err == sql.ErrNoRows {
			result.NotFound = append(result.NotFound, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check article %s: %w", id, err)
		}

		if !selected {
			_, err = tx.Exec(`
				UPDATE articles
				SET selected = 1, selected_at = ?, original_score = impact_score, updated_at = ?
				WHERE id = ?
			`, nowStr, nowStr, id)
			if err != nil {
				return nil, fmt.Errorf("failed to select article %s: %w", id, err)
			}
		}

		result.SelectedCount++
		result.SelectedIDs = append(result.SelectedIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk selection: %w", err)
	}
	return result, nil
}

// ClearSelections resets every selected article and returns the count cleared.
func (r *ArticleRepositoryImpl) ClearSelections() (int, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(`
		UPDATE articles
		SET selected = 0, selected_at = NULL, original_score = NULL, updated_at = ?
		WHERE selected = 1
	`, now.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to clear selections: %w", err)
	}

	cleared, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared selections: %w", err)
	}
	return int(cleared), nil
}

func (r *ArticleRepositoryImpl) CountArticles(selectedOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM articles"
	if selectedOnly {
		query += " WHERE selected = 1"
	}

	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *ArticleRepositoryImpl) CountBySector() (map[string]int, error) {
	return r.countByString(`
		SELECT CASE WHEN primary_sector = '' THEN 'unknown' ELSE primary_sector END, COUNT(*)
		FROM articles GROUP BY 1`)
}

func (r *ArticleRepositoryImpl) CountByStrategicTag() (map[string]int, error) {
	return r.countByString(`SELECT strategic_tag, COUNT(*) FROM articles GROUP BY strategic_tag`)
}

func (r *ArticleRepositoryImpl) CountByImpactScore() (map[int]int, error) {
	rows, err := r.db.Query(`SELECT impact_score, COUNT(*) FROM articles GROUP BY impact_score`)
	if err != nil {
		return nil, fmt.Errorf("failed to query score distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[int]int)
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		distribution[score] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution rows: %w", err)
	}
	return distribution, nil
}

func (r *ArticleRepositoryImpl) countByString(query string) (map[string]int, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		distribution[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution rows: %w", err)
	}
	return distribution, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
