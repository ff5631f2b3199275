package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsintel/internal/domain"
	"newsintel/internal/infrastructure/cache"
)

type fakeSentiment struct {
	result domain.StageResult[domain.Sentiment]
	err    error
	panics bool
	calls  atomic.Int32
}

func (f *fakeSentiment) Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Sentiment], error) {
	f.calls.Add(1)
	if f.panics {
		panic("sentiment stage blew up")
	}
	return f.result, f.err
}

type fakeCredibility struct {
	result domain.StageResult[domain.Credibility]
	err    error
}

func (f *fakeCredibility) Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Credibility], error) {
	return f.result, f.err
}

type fakeSummary struct {
	result domain.StageResult[string]
	err    error
	calls  atomic.Int32
}

func (f *fakeSummary) Summarize(ctx context.Context, article domain.RawArticle, maxLength int) (domain.StageResult[string], error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeSource struct {
	articles  []domain.RawArticle
	headlines []domain.RawArticle
	err       error
}

func (f *fakeSource) Fetch(ctx context.Context, query string, pageSize int) ([]domain.RawArticle, error) {
	return f.articles, f.err
}

func (f *fakeSource) TopHeadlines(ctx context.Context, category, country string, pageSize int) ([]domain.RawArticle, error) {
	return f.headlines, f.err
}

func (f *fakeSource) Ping(ctx context.Context) error { return nil }

func primaryResult[T any](value T) domain.StageResult[T] {
	return domain.StageResult[T]{Value: value, Confidence: 0.9, Origin: domain.OriginPrimary}
}

func allEnabled() Options {
	return Options{
		RequestTimeout:    time.Minute,
		MaxContentBytes:   1 << 20,
		MaxSummaryLength:  400,
		MaxBatchArticles:  20,
		BatchConcurrency:  4,
		EnableSentiment:   true,
		EnableCredibility: true,
		EnableSummary:     true,
	}
}

func happyDeps() (PipelineDeps, *fakeSentiment, *fakeSummary) {
	sentiment := &fakeSentiment{result: primaryResult(domain.SentimentPositive)}
	summarizer := &fakeSummary{result: primaryResult("a concise summary")}
	deps := PipelineDeps{
		Sentiment:   sentiment,
		Credibility: &fakeCredibility{result: primaryResult(domain.CredibilityAuthentic)},
		Summary:     summarizer,
	}
	return deps, sentiment, summarizer
}

func testArticle() domain.RawArticle {
	return domain.RawArticle{
		Title:   "Stocks rally as tech earnings beat expectations",
		Content: "Technology shares posted a broad rally on Tuesday after earnings beat expectations.",
		Source:  "Reuters",
	}
}

func TestProcessOnePopulatesAllFields(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	p := NewPipeline(deps, allEnabled())

	record, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)

	require.Equal(t, domain.SentimentPositive, record.Sentiment.Value)
	require.Equal(t, domain.OriginPrimary, record.Sentiment.Origin)
	require.Equal(t, domain.CredibilityAuthentic, record.Credibility.Value)
	require.Equal(t, "a concise summary", record.Summary.Value)
	require.Equal(t, domain.RiskLow, record.Risk.Level)
	require.False(t, record.Partial)
	require.False(t, record.ProcessedAt.IsZero())
}

func TestProcessOneRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	deps, sentiment, _ := happyDeps()
	p := NewPipeline(deps, allEnabled())

	_, err := p.ProcessOne(context.Background(), domain.RawArticle{Title: "only a title"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Zero(t, sentiment.calls.Load(), "no stage may run on invalid input")
}

func TestProcessOneRejectsOversizedContent(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	opts := allEnabled()
	opts.MaxContentBytes = 32
	p := NewPipeline(deps, opts)

	_, err := p.ProcessOne(context.Background(), domain.RawArticle{
		Title:   "big",
		Content: strings.Repeat("x", 64),
	})
	require.ErrorIs(t, err, domain.ErrContentTooLarge)
}

func TestProcessOneDegradesFailingStage(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Summary = &fakeSummary{
		result: domain.Unavailable(""),
		err:    errors.New("provider exploded"),
	}
	p := NewPipeline(deps, allEnabled())

	record, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err, "stage failure must not fail the request")
	require.Equal(t, domain.OriginUnavailable, record.Summary.Origin)
	require.Equal(t, domain.OriginPrimary, record.Sentiment.Origin)
	require.True(t, record.Partial)
}

func TestProcessOneSurvivesStagePanic(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Sentiment = &fakeSentiment{panics: true}
	p := NewPipeline(deps, allEnabled())

	record, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)
	require.Equal(t, domain.OriginUnavailable, record.Sentiment.Origin)
	require.Equal(t, domain.SentimentNeutral, record.Sentiment.Value)
}

func TestDisabledStageSkipsWork(t *testing.T) {
	t.Parallel()

	deps, sentiment, _ := happyDeps()
	opts := allEnabled()
	opts.EnableSentiment = false
	p := NewPipeline(deps, opts)

	record, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)
	require.Equal(t, domain.OriginUnavailable, record.Sentiment.Origin)
	require.Zero(t, record.Sentiment.Confidence)
	require.Zero(t, sentiment.calls.Load())
	require.True(t, record.Partial)
}

func TestCacheShortCircuitsRepeatedArticles(t *testing.T) {
	t.Parallel()

	deps, sentiment, summarizer := happyDeps()
	deps.Cache = cache.NewMemory(64, time.Minute)
	p := NewPipeline(deps, allEnabled())

	_, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)
	record, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)

	require.Equal(t, int32(1), sentiment.calls.Load(), "second run must hit the cache")
	require.Equal(t, int32(1), summarizer.calls.Load())
	require.Equal(t, domain.OriginPrimary, record.Sentiment.Origin)
}

func TestCacheSkipsUnavailableResults(t *testing.T) {
	t.Parallel()

	failing := &fakeSentiment{
		result: domain.Unavailable(domain.SentimentNeutral),
		err:    domain.ErrModelUnavailable,
	}
	deps, _, _ := happyDeps()
	deps.Sentiment = failing
	deps.Cache = cache.NewMemory(64, time.Minute)
	p := NewPipeline(deps, allEnabled())

	_, err := p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)
	_, err = p.ProcessOne(context.Background(), testArticle())
	require.NoError(t, err)

	require.Equal(t, int32(2), failing.calls.Load(), "unavailable results must not be cached")
}

func TestProcessBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	p := NewPipeline(deps, allEnabled())

	articles := []domain.RawArticle{
		{Title: "first", Content: "first article body about markets."},
		{Title: "malformed"},
		{Title: "third", Content: "third article body about energy."},
	}

	records := p.ProcessBatch(context.Background(), articles)
	require.Len(t, records, 3)

	require.Equal(t, "first", records[0].Article.Title)
	require.Equal(t, domain.OriginPrimary, records[0].Sentiment.Origin)

	require.Equal(t, "malformed", records[1].Article.Title)
	require.Equal(t, domain.OriginUnavailable, records[1].Sentiment.Origin)
	require.True(t, records[1].Partial)

	require.Equal(t, "third", records[2].Article.Title)
	require.Equal(t, domain.OriginPrimary, records[2].Sentiment.Origin)
}

type flakyCredibility struct {
	failOn string
}

func (f *flakyCredibility) Classify(ctx context.Context, article domain.RawArticle) (domain.StageResult[domain.Credibility], error) {
	if article.Title == f.failOn {
		panic("credibility stage internal error")
	}
	return primaryResult(domain.CredibilityAuthentic), nil
}

func TestProcessBatchStageErrorOnlyAffectsOneArticle(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Credibility = &flakyCredibility{failOn: "second"}
	p := NewPipeline(deps, allEnabled())

	articles := []domain.RawArticle{
		{Title: "first", Content: "first article body about markets."},
		{Title: "second", Content: "second article body about storms."},
		{Title: "third", Content: "third article body about energy."},
	}

	records := p.ProcessBatch(context.Background(), articles)
	require.Len(t, records, 3)

	require.Equal(t, domain.OriginUnavailable, records[1].Credibility.Origin)
	require.Equal(t, domain.CredibilityUnknown, records[1].Credibility.Value)
	require.Equal(t, domain.OriginPrimary, records[1].Sentiment.Origin, "other stages keep working")

	require.Equal(t, domain.OriginPrimary, records[0].Credibility.Origin)
	require.Equal(t, domain.OriginPrimary, records[2].Credibility.Origin)
}

func TestFetchAndProcessEmptyProviderResponse(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Source = &fakeSource{}
	p := NewPipeline(deps, allEnabled())

	records, err := p.FetchAndProcess(context.Background(), "nothing", 5)
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestFetchAndProcessRunsPipeline(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Source = &fakeSource{articles: []domain.RawArticle{testArticle()}}
	p := NewPipeline(deps, allEnabled())

	records, err := p.FetchAndProcess(context.Background(), "tech", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.SentimentPositive, records[0].Sentiment.Value)
}

func TestFetchTopHeadlinesRunsPipeline(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Source = &fakeSource{headlines: []domain.RawArticle{testArticle()}}
	p := NewPipeline(deps, allEnabled())

	records, err := p.FetchTopHeadlines(context.Background(), "business", "us", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.SentimentPositive, records[0].Sentiment.Value)
}

func TestFetchTopHeadlinesEmptyProviderResponse(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Source = &fakeSource{}
	p := NewPipeline(deps, allEnabled())

	records, err := p.FetchTopHeadlines(context.Background(), "", "", 5)
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestFetchAndProcessPropagatesSourceError(t *testing.T) {
	t.Parallel()

	deps, _, _ := happyDeps()
	deps.Source = &fakeSource{err: errors.New("provider down")}
	p := NewPipeline(deps, allEnabled())

	_, err := p.FetchAndProcess(context.Background(), "tech", 5)
	require.Error(t, err)
}
