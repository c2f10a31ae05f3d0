package curation

import (
	"errors"
	"sort"

	"purpleletter/app/database"
)

// ErrInvalidTopN is returned when a ranking is requested with a
// non-positive result count.
var ErrInvalidTopN = errors.New("top-n must be at least 1")

// Ranker produces the recommended shortlist from the scored article pool.
type Ranker struct {
	minScore           int
	ecommercePreferred bool
}

// NewRanker configures ranking. minScore excludes low-impact articles;
// ecommercePreferred inserts the e-commerce tie-break between impact score
// and recency.
func NewRanker(minScore int, ecommercePreferred bool) *Ranker {
	return &Ranker{
		minScore:           minScore,
		ecommercePreferred: ecommercePreferred,
	}
}

// Rank filters and orders candidates, returning at most topN articles.
// Already-selected articles never reappear as recommendations. The ordering
// is total, so equal inputs always produce the same output.
func (r *Ranker) Rank(articles []database.Article, topN int) ([]database.Article, error) {
	if topN < 1 {
		return nil, ErrInvalidTopN
	}

	candidates := make([]database.Article, 0, len(articles))
	for _, article := range articles {
		if article.Selected {
			continue
		}
		if article.ImpactScore < r.minScore {
			continue
		}
		candidates = append(candidates, article)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return r.less(candidates[i], candidates[j])
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

func (r *Ranker) less(a, b database.Article) bool {
	if a.ImpactScore != b.ImpactScore {
		return a.ImpactScore > b.ImpactScore
	}

	if r.ecommercePreferred {
		aCommerce := a.EcommerceRelevance > 0
		bCommerce := b.EcommerceRelevance > 0
		if aCommerce != bCommerce {
			return aCommerce
		}
	}

	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}

	return a.ID < b.ID
}
