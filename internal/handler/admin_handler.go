package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/voyago/service-booking/internal/application"
	"github.com/voyago/service-booking/internal/auth"
	"github.com/voyago/service-booking/internal/middleware"
	"github.com/voyago/service-booking/pkg/response"
)

// AdminHandler handles admin HTTP requests for booking and coupon management.
type AdminHandler struct {
	bookings *application.BookingService
	coupons  *application.CouponService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, coupons *application.CouponService) *AdminHandler {
	return &AdminHandler{bookings: bookings, coupons: coupons}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/coupons", h.CreateCoupon)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// CreateCoupon handles POST /api/v1/admin/coupons.
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req application.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.coupons.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
