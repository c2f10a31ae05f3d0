package curation

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"purpleletter/app/database"
	"purpleletter/app/scoring"
	"purpleletter/app/source"
)

// MalformedRecordError marks a raw record that cannot be turned into an
// article. Malformed records are skipped during sync, never aborting the
// batch they arrived in.
type MalformedRecordError struct {
	ArticleID string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	if e.ArticleID == "" {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed record %s: %s", e.ArticleID, e.Reason)
}

var whyItMattersBySector = map[string]string{
	database.SectorMacroEconomy:     "거시경제 관점에서 주목할 필요가 있는 뉴스입니다.",
	database.SectorFinance:          "금융시장 관점에서 주목할 필요가 있는 뉴스입니다.",
	database.SectorIndustryTech:     "산업/기술 측면에서 주목할 필요가 있는 뉴스입니다.",
	database.SectorSocialPolicy:     "사회정책 측면에서 주목할 필요가 있는 뉴스입니다.",
	database.SectorCultureLifestyle: "문화/생활 트렌드 측면에서 주목할 필요가 있는 뉴스입니다.",
}

const whyItMattersDefault = "시장에 영향을 미칠 수 있는 뉴스입니다."

var implicationByTag = map[string]string{
	database.TagOpportunity: "투자 또는 사업 기회로 검토해볼 만합니다.",
	database.TagRisk:        "리스크 관리 및 대응 방안 검토가 필요합니다.",
	database.TagTrend:       "시장 트렌드 변화에 주목하여 전략 조정을 고려하세요.",
	database.TagPolicy:      "규제 및 정책 변화에 따른 영향을 분석하세요.",
	database.TagBreaking:    "긴급 상황으로 즉시 모니터링이 필요합니다.",
	database.TagExclusive:   "단독 정보로 선제적 대응을 고려하세요.",
	database.TagNeutral:     "지속적인 모니터링을 권장합니다.",
}

// Transformer turns raw source records into fully scored articles.
type Transformer struct {
	engine *scoring.Engine
}

func NewTransformer(engine *scoring.Engine) *Transformer {
	return &Transformer{engine: engine}
}

// Transform builds the canonical article from a raw record: cleaned text,
// normalized sector, deterministic scores and tag, and the editorial
// annotations. now is used for missing publication dates and the record
// timestamps.
func (t *Transformer) Transform(raw source.RawArticle, now time.Time) (database.Article, error) {
	title := strings.TrimSpace(raw.Title)
	summary := CleanText(raw.Summary)

	if title == "" && summary == "" {
		return database.Article{}, &MalformedRecordError{
			ArticleID: raw.ArticleID,
			Reason:    "title and summary are both empty",
		}
	}

	id := raw.ArticleID
	if id == "" {
		if raw.Link == "" && title == "" {
			return database.Article{}, &MalformedRecordError{Reason: "no usable identifier"}
		}
		id = source.GenerateID(raw.Link, title)
	}

	publishedAt := now.UTC()
	if raw.PublishedAt != nil {
		publishedAt = raw.PublishedAt.UTC()
	}

	primarySector := raw.PrimarySector
	if !database.ValidSector(primarySector) {
		primarySector = ""
	}
	secondarySector := raw.SecondarySector
	if !database.ValidSector(secondarySector) {
		secondarySector = ""
	}

	score := t.engine.Score(title, summary)

	article := database.Article{
		ID:          id,
		Title:       title,
		Summary:     summary,
		Link:        raw.Link,
		Source:      raw.SourceName,
		PublishedAt: publishedAt,
		ImageURL:    raw.ImageURL,

		PrimarySector:   primarySector,
		SecondarySector: secondarySector,
		Subcategories:   raw.Subcategories,

		MarketRelevance:    score.MarketRelevance,
		BusinessRelevance:  score.BusinessRelevance,
		TechShift:          score.TechShift,
		Urgency:            score.Urgency,
		EcommerceRelevance: score.EcommerceRelevance,
		ImpactScore:        score.ImpactScore,

		StrategicTag:    score.StrategicTag,
		MatchedKeywords: score.MatchedKeywords,
		WhyItMatters:    whyItMatters(primarySector),
		Implication:     implication(score.StrategicTag),

		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	return article, nil
}

// CleanText strips HTML markup from summary text and collapses whitespace.
// Feed summaries routinely arrive wrapped in markup and entities.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			text = doc.Text()
		}
	}

	return strings.Join(strings.Fields(text), " ")
}

func whyItMatters(sector string) string {
	if annotation, ok := whyItMattersBySector[sector]; ok {
		return annotation
	}
	return whyItMattersDefault
}

func implication(tag string) string {
	if annotation, ok := implicationByTag[tag]; ok {
		return annotation
	}
	return implicationByTag[database.TagNeutral]
}
