package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/domain/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/http/response"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

type fakeCurriculumService struct {
	curricula  map[string]*types.Curriculum
	refreshErr error
	refreshed  []string
}

func (f *fakeCurriculumService) GetCurriculum(ctx context.Context, language string) (*types.Curriculum, error) {
	if c, ok := f.curricula[language]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("curriculum for %q: %w", language, services.ErrDataNotFound)
}

func (f *fakeCurriculumService) GetCanonicalSources(ctx context.Context, language string) ([]types.CanonicalSource, error) {
	c, err := f.GetCurriculum(ctx, language)
	if err != nil {
		return nil, err
	}
	return c.CanonicalSources, nil
}

func (f *fakeCurriculumService) GetLanguageOverview(ctx context.Context, language string) (*services.LanguageOverview, error) {
	c, err := f.GetCurriculum(ctx, language)
	if err != nil {
		return nil, err
	}
	return &services.LanguageOverview{Sources: c.CanonicalSources, Curriculum: c}, nil
}

func (f *fakeCurriculumService) GetSourceBreakdown(ctx context.Context, language, sourceID string) (*types.SourceBreakdown, error) {
	c, err := f.GetCurriculum(ctx, language)
	if err != nil {
		return nil, err
	}
	src, ok := c.FindSource(sourceID)
	if !ok {
		return nil, fmt.Errorf("source %q: %w", sourceID, services.ErrSourceNotFound)
	}
	b := c.Breakdown(src)
	return &b, nil
}

func (f *fakeCurriculumService) RefreshCurriculum(ctx context.Context, language string) (*types.Curriculum, error) {
	f.refreshed = append(f.refreshed, language)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if _, ok := f.curricula[language]; !ok {
		return nil, services.ErrLanguageUnknown
	}
	return f.curricula[language], nil
}

func (f *fakeCurriculumService) ListLanguages(ctx context.Context) ([]services.LanguageSummary, error) {
	out := []services.LanguageSummary{}
	for slug, c := range f.curricula {
		out = append(out, services.LanguageSummary{Slug: slug, Name: slug, HasCurriculum: true, Status: c.Status})
	}
	return out, nil
}

type fakeSearch struct{}

func (fakeSearch) Search(ctx context.Context, query string) (*services.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query: %w", services.ErrValidation)
	}
	return &services.SearchResponse{Query: query, Results: []services.SearchResult{
		{Title: "Go docs", URL: "https://go.dev/doc/", IsOfficial: true, Confidence: 0.9},
	}}, nil
}

func sampleCurriculum() *types.Curriculum {
	return &types.Curriculum{
		Language: "go",
		Headline: "Learn Go",
		Status:   types.StatusGenerated,
		CanonicalSources: []types.CanonicalSource{
			{ID: "go-dev-doc", Title: "Go docs", URL: "https://go.dev/doc/"},
			{ID: "go-spec", Title: "Spec", URL: "https://go.dev/ref/spec"},
		},
		OverallLearningPath: []types.LearningLevel{{
			Level: "Beginner",
			Topics: []types.Topic{{
				ID:                "basics",
				Title:             "Basics",
				HelpfulReferences: []types.SourceReference{{SourceID: "go-dev-doc", ShortEvidence: "tour"}},
			}},
		}},
	}
}

func newTestRouter(svc services.CurriculumService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLanguageHandler(logger.Nop(), svc)
	s := NewSearchHandler(logger.Nop(), fakeSearch{})
	r := gin.New()
	r.GET("/api/languages", h.ListLanguages)
	r.GET("/api/language/:slug", h.GetLanguage)
	r.GET("/api/language/:slug/sources", h.GetSources)
	r.GET("/api/language/:slug/curriculum", h.GetCurriculum)
	r.GET("/api/language/:slug/sources/:sourceId/breakdown", h.GetSourceBreakdown)
	r.POST("/api/language/:slug/refresh", h.Refresh)
	r.GET("/api/search", s.Search)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}

func TestLanguageHandler_Reads(t *testing.T) {
	r := newTestRouter(&fakeCurriculumService{curricula: map[string]*types.Curriculum{"go": sampleCurriculum()}})

	w := do(r, http.MethodGet, "/api/language/Go")
	require.Equal(t, http.StatusOK, w.Code)
	var overview services.LanguageOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	require.Len(t, overview.Sources, 2)
	require.Equal(t, "Learn Go", overview.Curriculum.Headline)

	w = do(r, http.MethodGet, "/api/language/go/sources")
	require.Equal(t, http.StatusOK, w.Code)
	var sources []types.CanonicalSource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	require.Equal(t, "go-dev-doc", sources[0].ID)

	w = do(r, http.MethodGet, "/api/language/go/curriculum")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/languages")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"slug":"go"`)
}

func TestLanguageHandler_NotFound(t *testing.T) {
	r := newTestRouter(&fakeCurriculumService{curricula: map[string]*types.Curriculum{"go": sampleCurriculum()}})

	cases := []struct {
		path string
		code string
	}{
		{"/api/language/rust", "curriculum_not_found"},
		{"/api/language/rust/sources", "curriculum_not_found"},
		{"/api/language/rust/curriculum", "curriculum_not_found"},
		{"/api/language/go/sources/nope/breakdown", "source_not_found"},
	}
	for _, tc := range cases {
		w := do(r, http.MethodGet, tc.path)
		require.Equal(t, http.StatusNotFound, w.Code, tc.path)
		require.Equal(t, tc.code, decodeError(t, w).Code, tc.path)
	}
}

func TestLanguageHandler_Breakdown(t *testing.T) {
	r := newTestRouter(&fakeCurriculumService{curricula: map[string]*types.Curriculum{"go": sampleCurriculum()}})

	w := do(r, http.MethodGet, "/api/language/go/sources/go-dev-doc/breakdown")
	require.Equal(t, http.StatusOK, w.Code)
	var b types.SourceBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Equal(t, "go-dev-doc", b.SourceID)
	require.Len(t, b.ExtractedTopics, 1)

	// listed but never cited
	w = do(r, http.MethodGet, "/api/language/go/sources/go-spec/breakdown")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Empty(t, b.ExtractedTopics)
}

func TestLanguageHandler_Refresh(t *testing.T) {
	svc := &fakeCurriculumService{curricula: map[string]*types.Curriculum{"go": sampleCurriculum()}}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/api/language/go/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"go"}, svc.refreshed)

	w = do(r, http.MethodPost, "/api/language/cobol/refresh")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "language_not_found", decodeError(t, w).Code)

	svc.refreshErr = errors.New("postgres: connection refused")
	w = do(r, http.MethodPost, "/api/language/go/refresh")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	require.Equal(t, "refresh_failed", apiErr.Code)
	require.NotContains(t, apiErr.Message, "postgres")
}

func TestSearchHandler(t *testing.T) {
	r := newTestRouter(&fakeCurriculumService{})

	w := do(r, http.MethodGet, "/api/search?query=golang")
	require.Equal(t, http.StatusOK, w.Code)
	var res services.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "golang", res.Query)
	require.Len(t, res.Results, 1)

	w = do(r, http.MethodGet, "/api/search?query=%20")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", decodeError(t, w).Code)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Pinger{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)

	w := do(r, http.MethodGet, "/healthcheck")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())

	w = do(r, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"db":"ok"`)
}

type fakeSavedLinks struct {
	links []savedlink.SavedLink
	err   error
}

func (f *fakeSavedLinks) Save(ctx context.Context, link savedlink.SavedLink) (*savedlink.SavedLink, error) {
	if strings.TrimSpace(link.URL) == "" {
		return nil, fmt.Errorf("url: %w", services.ErrValidation)
	}
	f.links = append(f.links, link)
	return &link, nil
}

func (f *fakeSavedLinks) List(ctx context.Context) ([]savedlink.SavedLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.links, nil
}

func TestSavedLinksHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeSavedLinks{}
	h := NewSavedLinksHandler(logger.Nop(), svc)
	r := gin.New()
	r.POST("/api/saved", h.Save)
	r.GET("/api/saved", h.List)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/saved", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"title":"Go docs","url":"https://go.dev/doc/","is_official":true,"metadata":{"type":"docs"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(`{"title":"no url"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", decodeError(t, w).Code)

	w = post(`not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/saved")
	require.Equal(t, http.StatusOK, w.Code)
	var got []savedlink.SavedLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "https://go.dev/doc/", got[0].URL)
	require.True(t, got[0].IsOfficial)
	require.Equal(t, "docs", got[0].Metadata.Type)

	svc.err = fmt.Errorf("%w: db gone", services.ErrPersistence)
	w = do(r, http.MethodGet, "/api/saved")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, decodeError(t, w).Message, "db gone")
}
