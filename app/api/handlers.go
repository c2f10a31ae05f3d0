package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"purpleletter/app/cfg"
	"purpleletter/app/curation"
	"purpleletter/app/database"
	"purpleletter/app/source"
	"purpleletter/app/tasks"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxTopN          = 10
	minImpactBound   = 4
	maxImpactBound   = 12
)

func NewHandler(articles database.ArticleRepository, runs database.SyncRunRepository,
	ranker *curation.Ranker, selector *curation.Selector, syncer *tasks.Syncer) *Handler {
	c := cfg.Get()

	return &Handler{
		articles:    articles,
		runs:        runs,
		ranker:      ranker,
		selector:    selector,
		syncer:      syncer,
		defaultTopN: c.DefaultTopN,
		version:     cfg.GetVersion(),
	}
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Purple Letter",
		"version": h.version,
		"status":  "running",
		"endpoints": map[string]string{
			"news":        "/news",
			"recommended": "/news/recommended",
			"newsletter":  "/newsletter",
			"analytics":   "/analytics/sectors",
			"sync":        "/sync (POST)",
			"health":      "/health",
		},
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.articles.CountArticles(false); err == nil {
		health["articles"] = count
		health["database_connected"] = true
	} else {
		health["database_connected"] = false
	}

	if run, err := h.runs.GetLatestRun(); err == nil && run != nil {
		health["last_sync"] = run.StartedAt.Format(time.RFC3339)
		health["last_sync_status"] = run.Status
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListNews(c *gin.Context) {
	filter := database.ArticleFilter{Limit: defaultListLimit}

	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil || minScore < minImpactBound || minScore > maxImpactBound {
			badRequest(c, fmt.Sprintf("min_score must be an integer between %d and %d", minImpactBound, maxImpactBound))
			return
		}
		filter.MinScore = minScore
	}

	if sector := c.Query("sector"); sector != "" {
		if !database.ValidSector(sector) {
			badRequest(c, "unknown sector: "+sector)
			return
		}
		filter.Sector = sector
	}

	if tag := c.Query("tag"); tag != "" {
		if !database.ValidStrategicTag(tag) {
			badRequest(c, "unknown strategic tag: "+tag)
			return
		}
		filter.StrategicTag = tag
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			badRequest(c, fmt.Sprintf("limit must be an integer between 1 and %d", maxListLimit))
			return
		}
		filter.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			badRequest(c, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	articles, total, err := h.articles.ListArticles(filter)
	if err != nil {
		h.serverError(c, "list_articles", err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Total:   total,
		Data:    articles,
	})
}

func (h *Handler) GetRecommended(c *gin.Context) {
	topN := h.defaultTopN
	if raw := c.Query("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTopN {
			badRequest(c, fmt.Sprintf("top_n must be an integer between 1 and %d", maxTopN))
			return
		}
		topN = parsed
	}

	candidates, err := h.articles.GetUnselected(0)
	if err != nil {
		h.serverError(c, "get_unselected", err)
		return
	}

	ranked, err := h.ranker.Rank(candidates, topN)
	if err != nil {
		if errors.Is(err, curation.ErrInvalidTopN) {
			badRequest(c, err.Error())
			return
		}
		h.serverError(c, "rank", err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Total:   len(ranked),
		Data:    ranked,
	})
}

func (h *Handler) GetNewsByID(c *gin.Context) {
	article, err := h.articles.GetArticle(c.Param("id"))
	if err != nil {
		h.articleError(c, "get_article", err)
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Success: true, Data: *article})
}

func (h *Handler) SelectNews(c *gin.Context) {
	article, err := h.selector.Select(c.Param("id"))
	if err != nil {
		h.articleError(c, "select_article", err)
		return
	}

	c.JSON(http.StatusOK, SelectionResponse{
		Success:       true,
		SelectedCount: 1,
		Message:       fmt.Sprintf("Article %q selected for newsletter", truncate(article.Title, 50)),
	})
}

func (h *Handler) SelectMultipleNews(c *gin.Context) {
	var request SelectionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "request body must be JSON with an ids array")
		return
	}
	if len(request.IDs) == 0 {
		badRequest(c, "ids must not be empty")
		return
	}

	result, err := h.selector.BulkSelect(request.IDs)
	if err != nil {
		h.serverError(c, "select_articles", err)
		return
	}

	c.JSON(http.StatusOK, SelectionResponse{
		Success:       result.SelectedCount > 0,
		SelectedCount: result.SelectedCount,
		Message:       fmt.Sprintf("Selected %d articles, %d not found", result.SelectedCount, len(result.NotFound)),
		NotFound:      result.NotFound,
	})
}

func (h *Handler) DeselectNews(c *gin.Context) {
	_, err := h.selector.Deselect(c.Param("id"))
	if err != nil {
		h.articleError(c, "deselect_article", err)
		return
	}

	c.JSON(http.StatusOK, SelectionResponse{
		Success: true,
		Message: "Article deselected from newsletter",
	})
}

func (h *Handler) ClearSelections(c *gin.Context) {
	count, err := h.selector.ClearAll()
	if err != nil {
		h.serverError(c, "clear_selections", err)
		return
	}

	c.JSON(http.StatusOK, SelectionResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d selections", count),
	})
}

func (h *Handler) GetNewsletter(c *gin.Context) {
	articles, err := h.selector.Selected()
	if err != nil {
		h.serverError(c, "get_selected", err)
		return
	}

	c.JSON(http.StatusOK, NewsletterResponse{
		Success:        true,
		SelectedCount:  len(articles),
		NewsletterDate: time.Now().UTC().Format("2006-01-02"),
		Data:           articles,
	})
}

func (h *Handler) GetNewsletterPreview(c *gin.Context) {
	preview, err := h.selector.Preview()
	if err != nil {
		h.serverError(c, "newsletter_preview", err)
		return
	}

	validation, err := h.selector.Validate()
	if err != nil {
		h.serverError(c, "validate_selection", err)
		return
	}

	c.JSON(http.StatusOK, NewsletterPreviewResponse{
		Preview:    preview,
		Validation: validation,
	})
}

func (h *Handler) GetSectorAnalytics(c *gin.Context) {
	total, err := h.articles.CountArticles(false)
	if err != nil {
		h.serverError(c, "count_articles", err)
		return
	}

	distribution, err := h.articles.CountBySector()
	if err != nil {
		h.serverError(c, "count_by_sector", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles":      total,
		"sector_distribution": distribution,
	})
}

func (h *Handler) GetScoreAnalytics(c *gin.Context) {
	total, err := h.articles.CountArticles(false)
	if err != nil {
		h.serverError(c, "count_articles", err)
		return
	}

	distribution, err := h.articles.CountByImpactScore()
	if err != nil {
		h.serverError(c, "count_by_impact_score", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles":     total,
		"score_distribution": distribution,
	})
}

func (h *Handler) GetTagAnalytics(c *gin.Context) {
	total, err := h.articles.CountArticles(false)
	if err != nil {
		h.serverError(c, "count_articles", err)
		return
	}

	distribution, err := h.articles.CountByStrategicTag()
	if err != nil {
		h.serverError(c, "count_by_strategic_tag", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles":   total,
		"tag_distribution": distribution,
	})
}

func (h *Handler) TriggerSync(c *gin.Context) {
	run, err := h.syncer.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, tasks.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
			return
		}
		if errors.Is(err, source.ErrSourceUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "article source unavailable",
				"run":   run,
			})
			return
		}
		h.serverError(c, "sync", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": len(run.Errors) == 0,
		"message": fmt.Sprintf("Synced %d articles", run.Saved),
		"run":     run,
	})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	run, err := h.runs.GetLatestRun()
	if err != nil {
		h.serverError(c, "get_latest_run", err)
		return
	}

	if run == nil {
		c.JSON(http.StatusOK, gin.H{"status": "never_synced"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) articleError(c *gin.Context, operation string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	h.serverError(c, operation, err)
}

func (h *Handler) serverError(c *gin.Context, operation string, err error) {
	slog.Error("Request failed", "operation", operation, "error", err)

	if errors.Is(err, database.ErrInconsistentState) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inconsistent article state"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
