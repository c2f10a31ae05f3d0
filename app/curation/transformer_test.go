package curation

import (
	"errors"
	"testing"
	"time"

	"purpleletter/app/database"
	"purpleletter/app/scoring"
	"purpleletter/app/source"
)

func newTestTransformer() *Transformer {
	return NewTransformer(scoring.NewEngine(scoring.DefaultPolicy(), false))
}

func TestTransformer_Transform(t *testing.T) {
	transformer := newTestTransformer()
	published := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	raw := source.RawArticle{
		ArticleID:     "abc123",
		Title:         "  코스피 상승 마감  ",
		Link:          "https://example.com/news/1",
		Summary:       "<p>증시가 <b>상승</b>했다</p>",
		SourceName:    "Example News",
		PublishedAt:   &published,
		PrimarySector: database.SectorFinance,
		Subcategories: []string{"markets"},
	}

	article, err := transformer.Transform(raw, now)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if article.ID != "abc123" {
		t.Errorf("Expected id abc123, got %q", article.ID)
	}
	if article.Title != "코스피 상승 마감" {
		t.Errorf("Expected trimmed title, got %q", article.Title)
	}
	if article.Summary != "증시가 상승했다" {
		t.Errorf("Expected HTML-stripped summary, got %q", article.Summary)
	}
	if !article.PublishedAt.Equal(published) {
		t.Errorf("Expected published at %v, got %v", published, article.PublishedAt)
	}
	if article.ImpactScore < 4 {
		t.Errorf("Expected impact score of at least 4, got %d", article.ImpactScore)
	}
	if article.StrategicTag == "" {
		t.Errorf("Expected a strategic tag to be assigned")
	}
	if article.WhyItMatters == "" || article.Implication == "" {
		t.Errorf("Expected annotations to be generated")
	}
	if article.Selected {
		t.Errorf("New articles must not arrive selected")
	}
}

func TestTransformer_Transform_MissingID(t *testing.T) {
	transformer := newTestTransformer()

	raw := source.RawArticle{
		Title: "제목 있는 기사",
		Link:  "https://example.com/news/2",
	}

	article, err := transformer.Transform(raw, time.Now())
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	expected := source.GenerateID(raw.Link, "제목 있는 기사")
	if article.ID != expected {
		t.Errorf("Expected derived id %q, got %q", expected, article.ID)
	}
}

func TestTransformer_Transform_EmptyRecord(t *testing.T) {
	transformer := newTestTransformer()

	_, err := transformer.Transform(source.RawArticle{Link: "https://example.com"}, time.Now())
	if err == nil {
		t.Fatalf("Expected error for record without title and summary")
	}

	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedRecordError, got %T", err)
	}
}

func TestTransformer_Transform_UnknownSector(t *testing.T) {
	transformer := newTestTransformer()

	raw := source.RawArticle{
		ArticleID:     "abc",
		Title:         "기사",
		PrimarySector: "sports",
	}

	article, err := transformer.Transform(raw, time.Now())
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if article.PrimarySector != "" {
		t.Errorf("Expected unknown sector to normalize to empty, got %q", article.PrimarySector)
	}
	if article.WhyItMatters != whyItMattersDefault {
		t.Errorf("Expected default why-it-matters annotation, got %q", article.WhyItMatters)
	}
}

func TestTransformer_Transform_MissingPublishedAt(t *testing.T) {
	transformer := newTestTransformer()
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

	article, err := transformer.Transform(source.RawArticle{ArticleID: "abc", Title: "기사"}, now)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if !article.PublishedAt.Equal(now) {
		t.Errorf("Expected missing publication date to default to %v, got %v", now, article.PublishedAt)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "그대로 유지", "그대로 유지"},
		{"html markup", "<p>증시가 <b>상승</b>했다</p>", "증시가 상승했다"},
		{"entities", "A &amp; B&nbsp;C", "A & B C"},
		{"whitespace runs", "너무   많은\n\n공백", "너무 많은 공백"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.expected {
				t.Errorf("CleanText(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
