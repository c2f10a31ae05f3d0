package curation

import (
	"fmt"
	"sort"
	"time"

	"purpleletter/app/database"
)

// Validation is the result of checking the current selection against the
// newsletter rules. Errors block sending; warnings and recommendations are
// advisory.
type Validation struct {
	IsValid         bool     `json:"is_valid"`
	SelectedCount   int      `json:"selected_count"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// NewsletterPreview summarizes the current selection as it would appear in
// an issue.
type NewsletterPreview struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	ArticleCount  int                `json:"article_count"`
	Sectors       []string           `json:"sectors"`
	AverageImpact float64            `json:"average_impact"`
	Articles      []database.Article `json:"articles"`
}

// Selector manages the human curation state: which articles are picked for
// the next newsletter issue.
type Selector struct {
	articles    database.ArticleRepository
	maxSelected int
	minAvgScore float64
	now         func() time.Time
}

func NewSelector(articles database.ArticleRepository, maxSelected int, minAvgScore float64) *Selector {
	return &Selector{
		articles:    articles,
		maxSelected: maxSelected,
		minAvgScore: minAvgScore,
		now:         time.Now,
	}
}

// Select marks an article as picked. Selecting an already-selected article
// is a no-op that keeps the original selection timestamp.
func (s *Selector) Select(id string) (*database.Article, error) {
	return s.articles.SelectArticle(id, s.now().UTC())
}

// Deselect returns an article to the pool. Deselecting an unselected
// article is a no-op.
func (s *Selector) Deselect(id string) (*database.Article, error) {
	return s.articles.DeselectArticle(id)
}

// BulkSelect marks several articles in one transaction. Unknown ids are
// reported back rather than failing the batch.
func (s *Selector) BulkSelect(ids []string) (*database.BulkSelectResult, error) {
	return s.articles.SelectArticles(ids, s.now().UTC())
}

// ClearAll deselects everything and reports how many articles were cleared.
func (s *Selector) ClearAll() (int, error) {
	return s.articles.ClearSelections()
}

// Selected returns the currently picked articles.
func (s *Selector) Selected() ([]database.Article, error) {
	return s.articles.GetSelected()
}

// Validate checks the current selection against the newsletter rules.
func (s *Selector) Validate() (*Validation, error) {
	selected, err := s.articles.GetSelected()
	if err != nil {
		return nil, err
	}

	validation := &Validation{
		SelectedCount:   len(selected),
		Errors:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}

	if len(selected) == 0 {
		validation.Errors = append(validation.Errors, "no articles selected")
	}
	if len(selected) > s.maxSelected {
		validation.Errors = append(validation.Errors,
			fmt.Sprintf("%d articles selected, maximum is %d", len(selected), s.maxSelected))
	}

	if len(selected) > 0 {
		if sectors := distinctSectors(selected); len(sectors) == 1 {
			validation.Warnings = append(validation.Warnings,
				fmt.Sprintf("all selected articles come from a single sector (%s)", sectors[0]))
		}

		if !hasHighlight(selected) {
			validation.Recommendations = append(validation.Recommendations,
				"consider including a breaking or exclusive article")
		}
		if avg := averageImpact(selected); avg < s.minAvgScore {
			validation.Recommendations = append(validation.Recommendations,
				fmt.Sprintf("average impact score %.1f is below the target of %.1f", avg, s.minAvgScore))
		}
	}

	validation.IsValid = len(validation.Errors) == 0
	return validation, nil
}

// Preview assembles the newsletter view of the current selection.
func (s *Selector) Preview() (*NewsletterPreview, error) {
	selected, err := s.articles.GetSelected()
	if err != nil {
		return nil, err
	}

	return &NewsletterPreview{
		GeneratedAt:   s.now().UTC(),
		ArticleCount:  len(selected),
		Sectors:       distinctSectors(selected),
		AverageImpact: averageImpact(selected),
		Articles:      selected,
	}, nil
}

func distinctSectors(articles []database.Article) []string {
	seen := make(map[string]bool)
	for _, article := range articles {
		sector := article.PrimarySector
		if sector == "" {
			sector = "unknown"
		}
		seen[sector] = true
	}

	sectors := make([]string, 0, len(seen))
	for sector := range seen {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	return sectors
}

func hasHighlight(articles []database.Article) bool {
	for _, article := range articles {
		if article.StrategicTag == database.TagBreaking || article.StrategicTag == database.TagExclusive {
			return true
		}
	}
	return false
}

func averageImpact(articles []database.Article) float64 {
	if len(articles) == 0 {
		return 0
	}
	total := 0
	for _, article := range articles {
		total += article.ImpactScore
	}
	return float64(total) / float64(len(articles))
}
