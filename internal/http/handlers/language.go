package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sotfinder-backend/internal/http/response"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

type LanguageHandler struct {
	log        *logger.Logger
	curriculum services.CurriculumService
}

func NewLanguageHandler(log *logger.Logger, curriculum services.CurriculumService) *LanguageHandler {
	return &LanguageHandler{
		log:        log.With("handler", "LanguageHandler"),
		curriculum: curriculum,
	}
}

func (h *LanguageHandler) fail(c *gin.Context, op string, err error, fallbackCode string) {
	ae := toAPIError(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", "language", c.Param("slug"), "error", err)
	}
	_ = c.Error(err)
	response.RespondAPIError(c, ae, fallbackCode)
}

func slugParam(c *gin.Context) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_language", errors.New("language slug required"))
		return "", false
	}
	return slug, true
}

// GET /api/languages
func (h *LanguageHandler) ListLanguages(c *gin.Context) {
	langs, err := h.curriculum.ListLanguages(c.Request.Context())
	if err != nil {
		h.fail(c, "ListLanguages", err, "list_languages_failed")
		return
	}
	response.RespondOK(c, gin.H{"languages": langs})
}

// GET /api/language/:slug
func (h *LanguageHandler) GetLanguage(c *gin.Context) {
	slug, ok := slugParam(c)
	if !ok {
		return
	}
	overview, err := h.curriculum.GetLanguageOverview(c.Request.Context(), slug)
	if err != nil {
		h.fail(c, "GetLanguage", err, "load_language_failed")
		return
	}
	response.RespondOK(c, overview)
}

// GET /api/language/:slug/sources
func (h *LanguageHandler) GetSources(c *gin.Context) {
	slug, ok := slugParam(c)
	if !ok {
		return
	}
	sources, err := h.curriculum.GetCanonicalSources(c.Request.Context(), slug)
	if err != nil {
		h.fail(c, "GetSources", err, "load_sources_failed")
		return
	}
	response.RespondOK(c, sources)
}

// GET /api/language/:slug/curriculum
func (h *LanguageHandler) GetCurriculum(c *gin.Context) {
	slug, ok := slugParam(c)
	if !ok {
		return
	}
	cur, err := h.curriculum.GetCurriculum(c.Request.Context(), slug)
	if err != nil {
		h.fail(c, "GetCurriculum", err, "load_curriculum_failed")
		return
	}
	response.RespondOK(c, cur)
}

// GET /api/language/:slug/sources/:sourceId/breakdown
func (h *LanguageHandler) GetSourceBreakdown(c *gin.Context) {
	slug, ok := slugParam(c)
	if !ok {
		return
	}
	sourceID := strings.TrimSpace(c.Param("sourceId"))
	b, err := h.curriculum.GetSourceBreakdown(c.Request.Context(), slug, sourceID)
	if err != nil {
		h.fail(c, "GetSourceBreakdown", err, "load_breakdown_failed")
		return
	}
	response.RespondOK(c, b)
}

// POST /api/language/:slug/refresh
func (h *LanguageHandler) Refresh(c *gin.Context) {
	slug, ok := slugParam(c)
	if !ok {
		return
	}
	cur, err := h.curriculum.RefreshCurriculum(c.Request.Context(), slug)
	if err != nil {
		h.fail(c, "Refresh", err, "refresh_failed")
		return
	}
	h.log.Info("curriculum refreshed via api", "language", slug, "status", cur.Status)
	response.RespondOK(c, cur)
}
