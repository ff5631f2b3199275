package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"newsintel/internal/domain"
	"newsintel/internal/usecase"
)

// Pinger reports reachability of an upstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Responder answers small-talk messages.
type Responder interface {
	Reply(message string) string
}

// HealthInfo is the static part of the health report.
type HealthInfo struct {
	SentimentModelLoaded   bool
	CredibilityModelLoaded bool
}

// Handler holds the route implementations.
type Handler struct {
	pipeline  *usecase.Pipeline
	responder Responder
	generator Pinger
	source    Pinger
	info      HealthInfo
}

// NewHandler wires the pipeline and its collaborators. Pingers may be
// nil when the corresponding upstream is not configured.
func NewHandler(pipeline *usecase.Pipeline, responder Responder, generator, source Pinger, info HealthInfo) *Handler {
	return &Handler{
		pipeline:  pipeline,
		responder: responder,
		generator: generator,
		source:    source,
		info:      info,
	}
}

type articlePayload struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

func (a articlePayload) toDomain() domain.RawArticle {
	publishedAt := time.Time{}
	if a.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			publishedAt = parsed
		}
	}
	return domain.RawArticle{
		Title:       a.Title,
		Content:     a.Content,
		Source:      a.Source,
		URL:         a.URL,
		PublishedAt: publishedAt,
	}
}

type processRequest struct {
	articlePayload
	IncludeAnalysis *bool `json:"include_analysis"`
}

type batchRequest struct {
	Articles        []articlePayload `json:"articles"`
	IncludeAnalysis *bool            `json:"include_analysis"`
}

type fetchRequest struct {
	Query           string `json:"query"`
	PageSize        int    `json:"page_size"`
	IncludeAnalysis *bool  `json:"include_analysis"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// includeAnalysis defaults to true when the field is omitted.
func includeAnalysis(flag *bool) bool {
	return flag == nil || *flag
}

// Process analyzes one caller-supplied article.
func (h *Handler) Process(c echo.Context) error {
	var req processRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "malformed request body"})
	}

	article := req.toDomain()
	var (
		record domain.ProcessedArticle
		err    error
	)
	if includeAnalysis(req.IncludeAnalysis) {
		record, err = h.pipeline.ProcessOne(c.Request().Context(), article)
	} else {
		record, err = h.pipeline.Passthrough(article)
	}
	if err != nil {
		return validationError(c, err)
	}
	return c.JSON(http.StatusOK, toRecordDTO(record))
}

// BatchProcess analyzes a caller-supplied list with bounded concurrency.
func (h *Handler) BatchProcess(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "malformed request body"})
	}
	if len(req.Articles) == 0 {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "articles list is empty"})
	}
	if len(req.Articles) > h.pipeline.MaxBatchArticles() {
		return c.JSON(http.StatusBadRequest, errorEnvelope{
			Error: "too many articles in one batch",
		})
	}

	articles := make([]domain.RawArticle, len(req.Articles))
	for i, a := range req.Articles {
		articles[i] = a.toDomain()
	}

	var records []domain.ProcessedArticle
	if includeAnalysis(req.IncludeAnalysis) {
		records = h.pipeline.ProcessBatch(c.Request().Context(), articles)
	} else {
		records = make([]domain.ProcessedArticle, len(articles))
		for i, article := range articles {
			record, err := h.pipeline.Passthrough(article)
			if err != nil {
				record = h.pipeline.UnavailableRecord(article)
			}
			records[i] = record
		}
	}
	return c.JSON(http.StatusOK, toBatchDTO(records))
}

// FetchAndProcess pulls fresh articles from the provider and analyzes them.
func (h *Handler) FetchAndProcess(c echo.Context) error {
	var req fetchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "malformed request body"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "query is required"})
	}

	records, err := h.pipeline.FetchAndProcess(c.Request().Context(), req.Query, req.PageSize)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorEnvelope{Error: err.Error()})
	}

	resp := toBatchDTO(records)
	resp.FetchInfo = &fetchInfoDTO{
		Query:     req.Query,
		Count:     len(records),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return c.JSON(http.StatusOK, resp)
}

// TopHeadlines pulls current headlines from the provider and analyzes
// them. Category and country arrive as query parameters; both optional.
func (h *Handler) TopHeadlines(c echo.Context) error {
	pageSize := 0
	if raw := c.QueryParam("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "page_size must be an integer"})
		}
		pageSize = parsed
	}

	category := c.QueryParam("category")
	country := c.QueryParam("country")

	records, err := h.pipeline.FetchTopHeadlines(c.Request().Context(), category, country, pageSize)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorEnvelope{Error: err.Error()})
	}

	resp := toBatchDTO(records)
	resp.FetchInfo = &fetchInfoDTO{
		Query:     strings.TrimSpace("top-headlines " + category),
		Count:     len(records),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return c.JSON(http.StatusOK, resp)
}

// Health reports upstream reachability and model load status.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{
		"sentiment_model":   loadStatus(h.info.SentimentModelLoaded),
		"credibility_model": loadStatus(h.info.CredibilityModelLoaded),
		"summarizer":        pingStatus(ctx, h.generator),
		"news_source":       pingStatus(ctx, h.source),
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"components": components,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers small-talk without touching the pipeline.
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: "malformed request body"})
	}
	return c.JSON(http.StatusOK, map[string]string{"reply": h.responder.Reply(req.Message)})
}

func validationError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrContentTooLarge) {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, errorEnvelope{Error: err.Error()})
}

func loadStatus(loaded bool) string {
	if loaded {
		return "loaded"
	}
	return "missing"
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "unreachable: " + err.Error()
	}
	return "ok"
}
