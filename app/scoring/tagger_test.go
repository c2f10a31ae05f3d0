package scoring

import (
	"testing"

	"purpleletter/app/database"
)

func TestEngine_AssignTag(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	tests := []struct {
		name     string
		title    string
		summary  string
		expected string
	}{
		{
			name:     "breaking marker in title",
			title:    "[속보] 한국은행 기준금리 동결",
			expected: database.TagBreaking,
		},
		{
			name:     "breaking wins over exclusive",
			title:    "[속보][단독] 대형 인수 협상 결렬",
			expected: database.TagBreaking,
		},
		{
			name:     "exclusive marker in title",
			title:    "[단독] 회사 내부 문건 입수",
			expected: database.TagExclusive,
		},
		{
			name:     "opportunity keywords dominate",
			title:    "신규 사업 성장 기회 확대 전망",
			expected: database.TagOpportunity,
		},
		{
			name:     "risk keywords dominate",
			title:    "수요 감소 우려 속 경영 위기 고조",
			expected: database.TagRisk,
		},
		{
			name:     "equal opportunity and risk falls through to neutral",
			title:    "성장 흐름과 하락 압력이 공존",
			expected: database.TagNeutral,
		},
		{
			name:     "tech keywords yield trend",
			title:    "AI 신기술 발표",
			expected: database.TagTrend,
		},
		{
			name:     "policy keywords yield policy",
			title:    "정부, 새 규제 법안 발표",
			expected: database.TagPolicy,
		},
		{
			name:     "no signal yields neutral",
			title:    "오늘의 주요 일정 안내",
			expected: database.TagNeutral,
		},
		{
			name:     "marker in summary does not trigger breaking",
			title:    "오늘의 주요 일정 안내",
			summary:  "[속보] 관련 내용 정리",
			expected: database.TagNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Score(tt.title, tt.summary)
			if score.StrategicTag != tt.expected {
				t.Errorf("Expected tag %q for %q, got %q", tt.expected, tt.title, score.StrategicTag)
			}
		})
	}
}

func TestEngine_AssignTag_OpportunityRequiresMajority(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), false)

	// Two risk hits against one opportunity hit.
	score := engine.Score("투자 축소에 실적 우려 확산", "")

	if score.StrategicTag != database.TagRisk {
		t.Errorf("Expected tag %q when risk keywords outnumber opportunity, got %q",
			database.TagRisk, score.StrategicTag)
	}
}
