package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

var _ Source = (*ScannerSource)(nil)

// ScannerSource reads raw articles from the external news scanner's sqlite
// database. The database is opened read-only and never written to.
type ScannerSource struct {
	dbPath string
}

func NewScannerSource(dbPath string) *ScannerSource {
	return &ScannerSource{dbPath: dbPath}
}

func (s *ScannerSource) Name() string {
	return "scanner"
}

func (s *ScannerSource) open() (*sql.DB, error) {
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	db, err := sql.Open("sqlite", "file:"+s.dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open scanner database: %v", ErrSourceUnavailable, err)
	}
	return db, nil
}

// Fetch returns up to limit of the most recently published articles.
func (s *ScannerSource) Fetch(ctx context.Context, limit int) ([]RawArticle, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT
			COALESCE(article_id, ''),
			COALESCE(title, ''),
			COALESCE(link, ''),
			COALESCE(summary, content, ''),
			COALESCE(source_name, 'Unknown'),
			COALESCE(published_at, ''),
			COALESCE(image_url, ''),
			COALESCE(primary_sector, ''),
			COALESCE(secondary_sector, ''),
			COALESCE(subcategories, '')
		FROM articles
		ORDER BY published_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query scanner database: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var articles []RawArticle
	for rows.Next() {
		var raw RawArticle
		var publishedAt, subcategories string

		err := rows.Scan(&raw.ArticleID, &raw.Title, &raw.Link, &raw.Summary,
			&raw.SourceName, &publishedAt, &raw.ImageURL,
			&raw.PrimarySector, &raw.SecondarySector, &subcategories)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scanner row: %w", err)
		}

		if raw.ArticleID == "" {
			raw.ArticleID = GenerateID(raw.Link, raw.Title)
		}
		raw.PublishedAt = parseScannerTime(publishedAt)
		raw.Subcategories = parseSubcategories(subcategories)

		articles = append(articles, raw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scanner rows: %w", err)
	}

	return articles, nil
}

// Check reports whether the scanner database is reachable and how many
// articles it holds.
func (s *ScannerSource) Check() (int, error) {
	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return count, nil
}

// parseScannerTime handles the timestamp formats the scanner is known to
// emit. Unparseable values become nil and are defaulted downstream.
func parseScannerTime(value string) *time.Time {
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func parseSubcategories(value string) []string {
	if value == "" {
		return nil
	}
	var subcategories []string
	if err := json.Unmarshal([]byte(value), &subcategories); err != nil {
		return nil
	}
	return subcategories
}
