package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/middleware"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/sirupsen/logrus"
)

type CouponHandler struct {
	ledger *ledger.Service
}

func NewCouponHandler(svc *ledger.Service) *CouponHandler {
	return &CouponHandler{ledger: svc}
}

// CreateCoupon mints a points-funded coupon. Regular callers always buy
// for themselves and must pay at least one point; admins may name any user
// and issue gift coupons.
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req models.CreateCouponUserRequest
	if !bindJSON(c, "CreateCoupon", &req) {
		return
	}
	if !middleware.IsAdmin(c) {
		if req.PointsCost < 1 {
			logrus.WithField("user_id", middleware.UserID(c)).Warn("CreateCoupon: Gift coupon requires admin")
			c.JSON(http.StatusForbidden, gin.H{"error": "Gift coupons require the admin role"})
			return
		}
		req.UserID = middleware.UserID(c)
	} else if req.UserID == "" {
		req.UserID = middleware.UserID(c)
	}

	coupon, err := h.ledger.CreateCouponUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreateCoupon", logrus.Fields{
			"user_id":     req.UserID,
			"coupon_code": req.Code,
		}, err, "Failed to create coupon")
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	var req models.ApplyCouponRequest
	if !bindJSON(c, "ApplyCoupon", &req) {
		return
	}

	userID := middleware.UserID(c)
	coupon, err := h.ledger.ApplyUserCoupon(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "ApplyCoupon", logrus.Fields{
			"user_id":     userID,
			"coupon_code": req.Code,
		}, err, "Failed to apply coupon")
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	userID := middleware.UserID(c)
	coupons, err := h.ledger.ListUserCoupons(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListCoupons", logrus.Fields{"user_id": userID}, err, "Failed to list coupons")
		return
	}
	if coupons == nil {
		coupons = make([]models.CouponUser, 0)
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}
