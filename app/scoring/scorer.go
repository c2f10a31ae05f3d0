package scoring

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Score is the full scoring result for one article. It is derived from the
// article text alone: the same text always produces the same Score.
type Score struct {
	MarketRelevance    int
	BusinessRelevance  int
	TechShift          int
	Urgency            int
	EcommerceRelevance int
	ImpactScore        int
	StrategicTag       string
	MatchedKeywords    []string
}

// Engine computes impact scores and strategic tags from a keyword policy.
type Engine struct {
	policy           *Policy
	tagRules         []tagRule
	ecommerceEnabled bool
}

func NewEngine(policy *Policy, ecommerceEnabled bool) *Engine {
	if _, ok := policy.Criteria[CriterionEcommerceRelevance]; !ok {
		ecommerceEnabled = false
	}
	return &Engine{
		policy:           policy,
		tagRules:         buildTagRules(policy.Tags),
		ecommerceEnabled: ecommerceEnabled,
	}
}

// Score computes every sub-score, the aggregate impact score, the strategic
// tag, and the matched-keyword audit trail for the given article text.
func (e *Engine) Score(title, summary string) Score {
	text := Normalize(title + " " + summary)

	var matched []string
	count := func(name string) int {
		criterion := e.policy.Criteria[name]
		n, hits := countMatches(text, criterion.Keywords)
		matched = append(matched, hits...)
		return n
	}

	marketCount := count(CriterionMarketRelevance)
	businessCount := count(CriterionBusinessRelevance)
	techCount := count(CriterionTechShift)
	urgencyCount := count(CriterionUrgency)

	score := Score{
		MarketRelevance:   e.policy.Criteria[CriterionMarketRelevance].Score(marketCount),
		BusinessRelevance: e.policy.Criteria[CriterionBusinessRelevance].Score(businessCount),
		TechShift:         e.policy.Criteria[CriterionTechShift].Score(techCount),
		Urgency:           e.policy.Criteria[CriterionUrgency].Score(urgencyCount),
	}

	if e.ecommerceEnabled {
		ecommerceCount := count(CriterionEcommerceRelevance)
		score.EcommerceRelevance = e.policy.Criteria[CriterionEcommerceRelevance].Score(ecommerceCount)
	}

	score.ImpactScore = score.MarketRelevance + score.BusinessRelevance +
		score.TechShift + score.Urgency + score.EcommerceRelevance

	score.StrategicTag = e.assignTag(title, text)
	score.MatchedKeywords = dedupeSorted(matched)

	return score
}

// EcommerceEnabled reports whether the additive e-commerce criterion is
// active, which widens the impact score range from 4-10 to 4-12.
func (e *Engine) EcommerceEnabled() bool {
	return e.ecommerceEnabled
}

// Normalize prepares text for keyword matching: NFC composition (Korean
// text arrives in mixed forms from different outlets) and lowercasing.
func Normalize(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}

// countMatches counts distinct keywords found in the normalized text and
// returns the original keyword forms that matched.
func countMatches(text string, keywords []string) (int, []string) {
	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(text, Normalize(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return len(matched), matched
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	sort.Strings(result)
	return result
}
