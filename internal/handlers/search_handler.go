package handlers

import (
	"net/http"

	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	*BaseHandler
	searchService services.SearchService
}

func NewSearchHandler(base *BaseHandler, searchService services.SearchService) *SearchHandler {
	return &SearchHandler{
		BaseHandler:   base,
		searchService: searchService,
	}
}

func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup, _ RouteMiddlewares) {
	search := rg.Group("/search")
	{
		search.GET("", h.SearchQuery)
		search.POST("", h.SearchForm)
	}
}

// SearchQuery - фильтры в query, до 20 результатов
func (h *SearchHandler) SearchQuery(c *gin.Context) {
	var req dto.SearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	h.search(c, &req, services.SearchLimitQuery)
}

// SearchForm - те же фильтры в JSON, до 50 результатов
func (h *SearchHandler) SearchForm(c *gin.Context) {
	var req dto.SearchRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	h.search(c, &req, services.SearchLimitForm)
}

func (h *SearchHandler) search(c *gin.Context, req *dto.SearchRequest, limit int) {
	resp, err := h.searchService.Search(h.GetDB(c), req, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
