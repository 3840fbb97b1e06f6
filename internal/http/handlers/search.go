package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sotfinder-backend/internal/http/response"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

type SearchHandler struct {
	log    *logger.Logger
	search services.SourceSearchService
}

func NewSearchHandler(log *logger.Logger, search services.SourceSearchService) *SearchHandler {
	return &SearchHandler{
		log:    log.With("handler", "SearchHandler"),
		search: search,
	}
}

// GET /api/search?query=
func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.search.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		ae := toAPIError(err, "search_failed")
		if ae.Status >= http.StatusInternalServerError {
			h.log.Error("Search failed", "error", err)
		}
		response.RespondAPIError(c, ae, "search_failed")
		return
	}
	response.RespondOK(c, res)
}
