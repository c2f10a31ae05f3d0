package database

import (
	"time"
)

// Sector values assigned by the external scanner. Unknown values are
// normalized to "" (unclassified) at transform time.
const (
	SectorMacroEconomy     = "macro_economy"
	SectorSocialPolicy     = "social_policy"
	SectorFinance          = "finance"
	SectorIndustryTech     = "industry_tech"
	SectorCultureLifestyle = "culture_lifestyle"
)

// Strategic tag values. Exactly one is assigned per article.
const (
	TagBreaking    = "breaking"
	TagExclusive   = "exclusive"
	TagOpportunity = "opportunity"
	TagRisk        = "risk"
	TagTrend       = "trend"
	TagPolicy      = "policy"
	TagNeutral     = "neutral"
)

func ValidSector(s string) bool {
	switch s {
	case SectorMacroEconomy, SectorSocialPolicy, SectorFinance, SectorIndustryTech, SectorCultureLifestyle:
		return true
	}
	return false
}

func ValidStrategicTag(s string) bool {
	switch s {
	case TagBreaking, TagExclusive, TagOpportunity, TagRisk, TagTrend, TagPolicy, TagNeutral:
		return true
	}
	return false
}

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt time.Time  `json:"published_at"`
	ImageURL    string     `json:"image_url,omitempty"`

	PrimarySector   string   `json:"primary_sector,omitempty"`
	SecondarySector string   `json:"secondary_sector,omitempty"`
	Subcategories   []string `json:"subcategories"`

	MarketRelevance    int `json:"market_relevance"`
	BusinessRelevance  int `json:"business_relevance"`
	TechShift          int `json:"tech_shift"`
	Urgency            int `json:"urgency"`
	EcommerceRelevance int `json:"ecommerce_relevance"`
	ImpactScore        int `json:"impact_score"`

	StrategicTag    string   `json:"strategic_tag"`
	MatchedKeywords []string `json:"matched_keywords"`
	WhyItMatters    string   `json:"why_it_matters,omitempty"`
	Implication     string   `json:"implication,omitempty"`

	Selected      bool       `json:"selected"`
	SelectedAt    *time.Time `json:"selected_at,omitempty"`
	OriginalScore *int       `json:"original_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleFilter narrows ListArticles results. Zero values mean "no filter".
type ArticleFilter struct {
	MinScore     int
	Sector       string
	StrategicTag string
	SelectedOnly bool
	Limit        int
	Offset       int
}

type SyncRun struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Fetched     int        `json:"fetched"`
	Transformed int        `json:"transformed"`
	Scored      int        `json:"scored"`
	Saved       int        `json:"saved"`
	Errors      []string   `json:"errors"`
	Status      string     `json:"status"`
}
