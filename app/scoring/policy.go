package scoring

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yml
var defaultPolicyYAML []byte

// Criterion keys as they appear in the policy file.
const (
	CriterionMarketRelevance    = "market_relevance"
	CriterionBusinessRelevance  = "business_relevance"
	CriterionTechShift          = "tech_shift"
	CriterionUrgency            = "urgency"
	CriterionEcommerceRelevance = "ecommerce_relevance"
)

// Criterion declares one sub-score: its range, the keywords that feed it,
// and the step table mapping distinct-match counts to scores. Steps[0] is
// the score for zero matches; the last entry covers any higher count.
type Criterion struct {
	Min      int      `yaml:"min"`
	Max      int      `yaml:"max"`
	Steps    []int    `yaml:"steps"`
	Keywords []string `yaml:"keywords"`
}

// TagKeywords holds the keyword material the strategic tag rules draw on.
type TagKeywords struct {
	BreakingMarkers  []string `yaml:"breaking_markers"`
	ExclusiveMarkers []string `yaml:"exclusive_markers"`
	Opportunity      []string `yaml:"opportunity"`
	Risk             []string `yaml:"risk"`
	Policy           []string `yaml:"policy"`
}

// Policy is the declarative scoring configuration. Keeping it as data lets
// the keyword lists and cut points be tuned and tested independently of the
// scoring engine.
type Policy struct {
	Criteria map[string]Criterion `yaml:"criteria"`
	Tags     TagKeywords          `yaml:"tags"`
}

// Score maps a distinct-match count to a sub-score through the step table,
// clamped to the criterion's declared range.
func (c Criterion) Score(matchCount int) int {
	if len(c.Steps) == 0 {
		return c.Min
	}

	idx := matchCount
	if idx >= len(c.Steps) {
		idx = len(c.Steps) - 1
	}

	score := c.Steps[idx]
	if score < c.Min {
		score = c.Min
	}
	if score > c.Max {
		score = c.Max
	}
	return score
}

// LoadPolicy parses a policy document and validates it.
func LoadPolicy(data []byte) (*Policy, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse scoring policy: %w", err)
	}

	required := []string{
		CriterionMarketRelevance,
		CriterionBusinessRelevance,
		CriterionTechShift,
		CriterionUrgency,
	}
	for _, name := range required {
		criterion, ok := policy.Criteria[name]
		if !ok {
			return nil, fmt.Errorf("scoring policy is missing criterion %q", name)
		}
		if err := validateCriterion(name, criterion); err != nil {
			return nil, err
		}
	}

	if ecommerce, ok := policy.Criteria[CriterionEcommerceRelevance]; ok {
		if err := validateCriterion(CriterionEcommerceRelevance, ecommerce); err != nil {
			return nil, err
		}
	}

	return &policy, nil
}

// DefaultPolicy returns the embedded policy. It panics on a malformed
// embedded file since that is a build defect, not a runtime condition.
func DefaultPolicy() *Policy {
	policy, err := LoadPolicy(defaultPolicyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded scoring policy is invalid: %v", err))
	}
	return policy
}

func validateCriterion(name string, c Criterion) error {
	if c.Min > c.Max {
		return fmt.Errorf("criterion %q: min %d exceeds max %d", name, c.Min, c.Max)
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("criterion %q: steps table is empty", name)
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("criterion %q: keyword list is empty", name)
	}
	for i := 1; i < len(c.Steps); i++ {
		if c.Steps[i] < c.Steps[i-1] {
			return fmt.Errorf("criterion %q: steps table must be monotonic", name)
		}
	}
	return nil
}
