package scoring

import (
	"reflect"
	"testing"

	"purpleletter/app/database"
)

func TestEngine_Score_BreakingMarketNews(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	score := engine.Score("[속보] 코스피 급락, 반도체 수출 비상", "")

	if score.MarketRelevance < 2 {
		t.Errorf("Expected market relevance >= 2, got %d", score.MarketRelevance)
	}
	if score.TechShift != 2 {
		t.Errorf("Expected tech shift 2, got %d", score.TechShift)
	}
	if score.Urgency != 2 {
		t.Errorf("Expected urgency 2, got %d", score.Urgency)
	}
	if score.StrategicTag != database.TagBreaking {
		t.Errorf("Expected strategic tag %q, got %q", database.TagBreaking, score.StrategicTag)
	}

	expectedSum := score.MarketRelevance + score.BusinessRelevance + score.TechShift + score.Urgency
	if score.ImpactScore != expectedSum {
		t.Errorf("Impact score %d does not equal sub-score sum %d", score.ImpactScore, expectedSum)
	}
}

func TestEngine_Score_EmptyText(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	score := engine.Score("", "")

	if score.MarketRelevance != 1 || score.BusinessRelevance != 1 {
		t.Errorf("Expected minimum relevance scores of 1, got market=%d business=%d",
			score.MarketRelevance, score.BusinessRelevance)
	}
	if score.TechShift != 1 || score.Urgency != 1 {
		t.Errorf("Expected minimum shift/urgency scores of 1, got tech=%d urgency=%d",
			score.TechShift, score.Urgency)
	}
	if score.ImpactScore != 4 {
		t.Errorf("Expected impact score 4 for empty text, got %d", score.ImpactScore)
	}
	if score.StrategicTag != database.TagNeutral {
		t.Errorf("Expected neutral tag for empty text, got %q", score.StrategicTag)
	}
	if len(score.MatchedKeywords) != 0 {
		t.Errorf("Expected no matched keywords for empty text, got %v", score.MatchedKeywords)
	}
}

func TestEngine_Score_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), true)
	title := "쿠팡, 물류 투자 확대로 매출 성장"
	summary := "이커머스 시장 경쟁이 심화되고 있다"

	first := engine.Score(title, summary)
	for i := 0; i < 10; i++ {
		again := engine.Score(title, summary)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Scoring is not deterministic: run %d produced %+v, expected %+v", i, again, first)
		}
	}
}

func TestEngine_Score_KeywordSaturation(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	// Far more market keywords than the steps table has entries.
	summary := "증시 코스피 코스닥 주가 시장 투자 금리 환율 달러 원화 채권 물가"
	score := engine.Score("시황 요약", summary)

	if score.MarketRelevance != 3 {
		t.Errorf("Expected market relevance capped at 3, got %d", score.MarketRelevance)
	}
	if score.ImpactScore > 10 {
		t.Errorf("Impact score %d exceeds maximum of 10 without e-commerce scoring", score.ImpactScore)
	}
}

func TestEngine_Score_EcommerceDisabled(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	score := engine.Score("쿠팡 새벽배송 물류센터 확장", "")

	if score.EcommerceRelevance != 0 {
		t.Errorf("Expected e-commerce relevance 0 when disabled, got %d", score.EcommerceRelevance)
	}
	if engine.EcommerceEnabled() {
		t.Errorf("Expected EcommerceEnabled to report false")
	}
}

func TestEngine_Score_EcommerceEnabled(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), true)

	score := engine.Score("쿠팡 새벽배송 물류센터 확장", "")

	if score.EcommerceRelevance != 2 {
		t.Errorf("Expected e-commerce relevance 2, got %d", score.EcommerceRelevance)
	}
	if !engine.EcommerceEnabled() {
		t.Errorf("Expected EcommerceEnabled to report true")
	}

	expectedSum := score.MarketRelevance + score.BusinessRelevance +
		score.TechShift + score.Urgency + score.EcommerceRelevance
	if score.ImpactScore != expectedSum {
		t.Errorf("Impact score %d does not equal sub-score sum %d", score.ImpactScore, expectedSum)
	}
}

func TestEngine_Score_MatchedKeywordsDeduplicated(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	score := engine.Score("코스피 상승", "코스피 지수가 코스피 사상 최고치를 경신")

	seen := make(map[string]int)
	for _, keyword := range score.MatchedKeywords {
		seen[keyword]++
		if seen[keyword] > 1 {
			t.Errorf("Matched keyword %q appears more than once", keyword)
		}
	}
}

func TestEngine_Score_CaseInsensitive(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	lower := engine.Score("breaking: stock market inflation", "")
	upper := engine.Score("BREAKING: STOCK MARKET INFLATION", "")

	if lower.ImpactScore != upper.ImpactScore {
		t.Errorf("Expected case-insensitive scoring, got %d vs %d", lower.ImpactScore, upper.ImpactScore)
	}
	if lower.StrategicTag != upper.StrategicTag {
		t.Errorf("Expected case-insensitive tagging, got %q vs %q", lower.StrategicTag, upper.StrategicTag)
	}
}

func TestNewEngine_EcommerceCriterionAbsent(t *testing.T) {
	policy := DefaultPolicy()
	delete(policy.Criteria, CriterionEcommerceRelevance)

	engine := NewEngine(policy, true)

	if engine.EcommerceEnabled() {
		t.Errorf("Expected e-commerce scoring to be disabled when the criterion is absent")
	}
}
