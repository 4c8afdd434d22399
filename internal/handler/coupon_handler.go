package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voyago/service-booking/internal/application"
	"github.com/voyago/service-booking/pkg/response"
)

// CouponHandler handles HTTP requests for coupon validation.
type CouponHandler struct {
	service *application.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *application.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes registers the public coupon routes.
func (h *CouponHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/coupons/validate", h.ValidateCoupon)
}

// ValidateCoupon handles POST /api/v1/coupons/validate. The outcome for an
// unknown or expired code is a 200 carrying the status so the form can show
// it inline; only a failed lookup is an error response.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidateCoupon(c.Request.Context(), req.Code, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
