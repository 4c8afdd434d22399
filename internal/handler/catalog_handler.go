package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voyago/service-booking/internal/application"
	"github.com/voyago/service-booking/internal/auth"
	"github.com/voyago/service-booking/internal/middleware"
	"github.com/voyago/service-booking/pkg/response"
)

// CatalogHandler handles HTTP requests for the bookable-item catalog.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes. Browsing is public; listing a new
// item requires a partner account.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	items := r.Group("/api/v1/items")
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.POST("",
			middleware.AuthMiddleware(jwtManager),
			middleware.RequireRole(auth.RolePartner),
			h.CreateItem,
		)
	}
}

// ListItems handles GET /api/v1/items?kind=tour.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListItems(c.Request.Context(), c.Query("kind"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetItem handles GET /api/v1/items/:id.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateItem handles POST /api/v1/items.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req application.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
