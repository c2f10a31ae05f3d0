package source

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"
)

// ErrSourceUnavailable means the external article source could not be
// reached. A sync that hits it aborts as a whole with prior state untouched.
var ErrSourceUnavailable = errors.New("article source unavailable")

// RawArticle is an article record as delivered by an external source,
// before transformation into the canonical shape.
type RawArticle struct {
	ArticleID       string
	Title           string
	Link            string
	Summary         string
	SourceName      string
	PublishedAt     *time.Time
	ImageURL        string
	PrimarySector   string
	SecondarySector string
	Subcategories   []string
}

// Source delivers raw article records on demand.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]RawArticle, error)
	Name() string
}

// GenerateID derives a stable article id from link and title, matching the
// scheme the external scanner uses for records without an explicit id.
func GenerateID(link, title string) string {
	sum := md5.Sum([]byte(link + ":" + title))
	return hex.EncodeToString(sum[:])[:16]
}
