package curation

import (
	"testing"
	"time"

	"purpleletter/app/database"
)

// fakeArticleRepo implements database.ArticleRepository over an in-memory
// slice, covering only what the selector exercises.
type fakeArticleRepo struct {
	selected     []database.Article
	clearedCount int
	selectedIDs  []string
	selectedAt   time.Time
}

func (f *fakeArticleRepo) GetArticle(id string) (*database.Article, error) {
	for _, article := range f.selected {
		if article.ID == id {
			return &article, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeArticleRepo) ListArticles(filter database.ArticleFilter) ([]database.Article, int, error) {
	return f.selected, len(f.selected), nil
}

func (f *fakeArticleRepo) GetUnselected(minScore int) ([]database.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) GetSelected() ([]database.Article, error) {
	return f.selected, nil
}

func (f *fakeArticleRepo) UpsertArticle(article database.Article) error {
	return nil
}

func (f *fakeArticleRepo) UpsertArticles(articles []database.Article) (int, error) {
	return len(articles), nil
}

func (f *fakeArticleRepo) SelectArticle(id string, now time.Time) (*database.Article, error) {
	f.selectedIDs = append(f.selectedIDs, id)
	f.selectedAt = now
	return &database.Article{ID: id, Selected: true, SelectedAt: &now}, nil
}

func (f *fakeArticleRepo) DeselectArticle(id string) (*database.Article, error) {
	return &database.Article{ID: id}, nil
}

func (f *fakeArticleRepo) SelectArticles(ids []string, now time.Time) (*database.BulkSelectResult, error) {
	f.selectedIDs = append(f.selectedIDs, ids...)
	return &database.BulkSelectResult{SelectedCount: len(ids), SelectedIDs: ids}, nil
}

func (f *fakeArticleRepo) ClearSelections() (int, error) {
	return f.clearedCount, nil
}

func (f *fakeArticleRepo) CountArticles(selectedOnly bool) (int, error) {
	return len(f.selected), nil
}

func (f *fakeArticleRepo) CountBySector() (map[string]int, error) {
	return nil, nil
}

func (f *fakeArticleRepo) CountByImpactScore() (map[int]int, error) {
	return nil, nil
}

func (f *fakeArticleRepo) CountByStrategicTag() (map[string]int, error) {
	return nil, nil
}

func selectedArticle(id, sector, tag string, impact int) database.Article {
	now := time.Now()
	return database.Article{
		ID:            id,
		PrimarySector: sector,
		StrategicTag:  tag,
		ImpactScore:   impact,
		Selected:      true,
		SelectedAt:    &now,
	}
}

func TestSelector_Validate_EmptySelection(t *testing.T) {
	selector := NewSelector(&fakeArticleRepo{}, 5, 6.0)

	validation, err := selector.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if validation.IsValid {
		t.Errorf("Empty selection should not be valid")
	}
	if len(validation.Errors) != 1 {
		t.Errorf("Expected 1 blocking error, got %d: %v", len(validation.Errors), validation.Errors)
	}
	if validation.SelectedCount != 0 {
		t.Errorf("Expected selected count 0, got %d", validation.SelectedCount)
	}
}

func TestSelector_Validate_TooManySelected(t *testing.T) {
	repo := &fakeArticleRepo{
		selected: []database.Article{
			selectedArticle("a", database.SectorFinance, database.TagBreaking, 8),
			selectedArticle("b", database.SectorMacroEconomy, database.TagRisk, 7),
			selectedArticle("c", database.SectorIndustryTech, database.TagTrend, 9),
		},
	}
	selector := NewSelector(repo, 2, 6.0)

	validation, err := selector.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if validation.IsValid {
		t.Errorf("Selection above the maximum should not be valid")
	}
	if len(validation.Errors) != 1 {
		t.Errorf("Expected 1 blocking error, got %v", validation.Errors)
	}
}

func TestSelector_Validate_SingleSectorWarning(t *testing.T) {
	repo := &fakeArticleRepo{
		selected: []database.Article{
			selectedArticle("a", database.SectorFinance, database.TagBreaking, 8),
			selectedArticle("b", database.SectorFinance, database.TagRisk, 7),
		},
	}
	selector := NewSelector(repo, 5, 6.0)

	validation, err := selector.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !validation.IsValid {
		t.Errorf("Warnings must not block: %v", validation.Errors)
	}
	if len(validation.Warnings) != 1 {
		t.Errorf("Expected single-sector warning, got %v", validation.Warnings)
	}
}

func TestSelector_Validate_Recommendations(t *testing.T) {
	repo := &fakeArticleRepo{
		selected: []database.Article{
			selectedArticle("a", database.SectorFinance, database.TagNeutral, 4),
			selectedArticle("b", database.SectorMacroEconomy, database.TagTrend, 5),
		},
	}
	selector := NewSelector(repo, 5, 6.0)

	validation, err := selector.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !validation.IsValid {
		t.Errorf("Recommendations must not block: %v", validation.Errors)
	}
	if len(validation.Recommendations) != 2 {
		t.Errorf("Expected highlight and average-score recommendations, got %v", validation.Recommendations)
	}
}

func TestSelector_Validate_CleanSelection(t *testing.T) {
	repo := &fakeArticleRepo{
		selected: []database.Article{
			selectedArticle("a", database.SectorFinance, database.TagBreaking, 9),
			selectedArticle("b", database.SectorMacroEconomy, database.TagOpportunity, 8),
			selectedArticle("c", database.SectorIndustryTech, database.TagTrend, 7),
		},
	}
	selector := NewSelector(repo, 5, 6.0)

	validation, err := selector.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !validation.IsValid {
		t.Errorf("Expected valid selection, got errors %v", validation.Errors)
	}
	if len(validation.Warnings) != 0 || len(validation.Recommendations) != 0 {
		t.Errorf("Expected no advisories, got warnings %v recommendations %v",
			validation.Warnings, validation.Recommendations)
	}
}

func TestSelector_Preview(t *testing.T) {
	repo := &fakeArticleRepo{
		selected: []database.Article{
			selectedArticle("a", database.SectorFinance, database.TagBreaking, 9),
			selectedArticle("b", "", database.TagTrend, 7),
		},
	}
	selector := NewSelector(repo, 5, 6.0)

	preview, err := selector.Preview()
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if preview.ArticleCount != 2 {
		t.Errorf("Expected 2 articles, got %d", preview.ArticleCount)
	}
	if preview.AverageImpact != 8.0 {
		t.Errorf("Expected average impact 8.0, got %.1f", preview.AverageImpact)
	}

	expectedSectors := []string{database.SectorFinance, "unknown"}
	if len(preview.Sectors) != len(expectedSectors) {
		t.Fatalf("Expected sectors %v, got %v", expectedSectors, preview.Sectors)
	}
	for i, sector := range expectedSectors {
		if preview.Sectors[i] != sector {
			t.Errorf("Expected sector %q at position %d, got %q", sector, i, preview.Sectors[i])
		}
	}
}

func TestSelector_ClearAll(t *testing.T) {
	repo := &fakeArticleRepo{clearedCount: 5}
	selector := NewSelector(repo, 5, 6.0)

	count, err := selector.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 cleared, got %d", count)
	}
}

func TestSelector_Select_UsesUTCTimestamps(t *testing.T) {
	repo := &fakeArticleRepo{}
	selector := NewSelector(repo, 5, 6.0)

	article, err := selector.Select("abc")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if !article.Selected {
		t.Errorf("Expected article to be selected")
	}
	if repo.selectedAt.Location() != time.UTC {
		t.Errorf("Expected selection timestamp in UTC, got %v", repo.selectedAt.Location())
	}
}
