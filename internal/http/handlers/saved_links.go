package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/sotfinder-backend/internal/domain/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/http/response"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

type SavedLinksHandler struct {
	log   *logger.Logger
	links services.SavedLinkService
}

func NewSavedLinksHandler(log *logger.Logger, links services.SavedLinkService) *SavedLinksHandler {
	return &SavedLinksHandler{
		log:   log.With("handler", "SavedLinksHandler"),
		links: links,
	}
}

// POST /api/saved
func (h *SavedLinksHandler) Save(c *gin.Context) {
	var req types.SavedLink
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	saved, err := h.links.Save(c.Request.Context(), req)
	if err != nil {
		ae := toAPIError(err, "save_failed")
		if ae.Status >= http.StatusInternalServerError {
			h.log.Error("Save link failed", "error", err)
		}
		response.RespondAPIError(c, ae, "save_failed")
		return
	}
	response.RespondOK(c, saved)
}

// GET /api/saved
func (h *SavedLinksHandler) List(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		h.log.Error("List saved links failed", "error", err)
		response.RespondAPIError(c, toAPIError(err, "list_failed"), "list_failed")
		return
	}
	response.RespondOK(c, links)
}
