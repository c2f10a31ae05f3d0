package api

import (
	"purpleletter/app/curation"
	"purpleletter/app/database"
	"purpleletter/app/tasks"
)

type Handler struct {
	articles    database.ArticleRepository
	runs        database.SyncRunRepository
	ranker      *curation.Ranker
	selector    *curation.Selector
	syncer      *tasks.Syncer
	defaultTopN int
	version     string
}

type ListResponse struct {
	Success bool               `json:"success"`
	Total   int                `json:"total"`
	Data    []database.Article `json:"data"`
}

type ItemResponse struct {
	Success bool             `json:"success"`
	Data    database.Article `json:"data"`
}

type SelectionResponse struct {
	Success       bool     `json:"success"`
	SelectedCount int      `json:"selected_count"`
	Message       string   `json:"message"`
	NotFound      []string `json:"not_found,omitempty"`
}

type NewsletterResponse struct {
	Success        bool               `json:"success"`
	SelectedCount  int                `json:"selected_count"`
	NewsletterDate string             `json:"newsletter_date"`
	Data           []database.Article `json:"data"`
}

type NewsletterPreviewResponse struct {
	Preview    *curation.NewsletterPreview `json:"preview"`
	Validation *curation.Validation        `json:"validation"`
}

type SelectionRequest struct {
	IDs []string `json:"ids"`
}
