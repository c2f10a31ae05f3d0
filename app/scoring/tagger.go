package scoring

import (
	"strings"

	"purpleletter/app/database"
)

// tagRule pairs a strategic tag with its predicate. Rules are evaluated in
// a fixed order and the first match wins; the ordering is editorial policy
// and must not be rearranged, since several predicates can hold at once.
type tagRule struct {
	tag     string
	applies func(title, text string, p *Policy) bool
}

func buildTagRules(kw TagKeywords) []tagRule {
	return []tagRule{
		{
			tag: database.TagBreaking,
			applies: func(title, _ string, _ *Policy) bool {
				return containsAny(title, kw.BreakingMarkers)
			},
		},
		{
			tag: database.TagExclusive,
			applies: func(title, _ string, _ *Policy) bool {
				return containsAny(title, kw.ExclusiveMarkers)
			},
		},
		{
			tag: database.TagOpportunity,
			applies: func(_, text string, _ *Policy) bool {
				opportunity := countAny(text, kw.Opportunity)
				risk := countAny(text, kw.Risk)
				return opportunity > 0 && opportunity > risk
			},
		},
		{
			tag: database.TagRisk,
			applies: func(_, text string, _ *Policy) bool {
				opportunity := countAny(text, kw.Opportunity)
				risk := countAny(text, kw.Risk)
				return risk > 0 && risk > opportunity
			},
		},
		{
			tag: database.TagTrend,
			applies: func(_, text string, p *Policy) bool {
				return countAny(text, p.Criteria[CriterionTechShift].Keywords) > 0
			},
		},
		{
			tag: database.TagPolicy,
			applies: func(_, text string, _ *Policy) bool {
				return containsAny(text, kw.Policy)
			},
		},
	}
}

// assignTag runs the rule chain over the raw title (markers are
// title-bound) and the normalized combined text.
func (e *Engine) assignTag(title, text string) string {
	normalizedTitle := Normalize(title)
	for _, rule := range e.tagRules {
		if rule.applies(normalizedTitle, text, e.policy) {
			return rule.tag
		}
	}
	return database.TagNeutral
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, Normalize(keyword)) {
			return true
		}
	}
	return false
}

// countAny counts distinct keyword hits; equal nonzero opportunity and risk
// densities cancel out and fall through to the next rule.
func countAny(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, Normalize(keyword)) {
			count++
		}
	}
	return count
}
