package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/middleware"
)

// Register mounts the API under /api on router.
func Register(router gin.IRouter, svc *ledger.Service, jwtSecret []byte) {
	points := NewPointsHandler(svc)
	coupons := NewCouponHandler(svc)
	users := NewUserHandler(svc)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", middleware.RequireAuth(jwtSecret))
	{
		api.GET("/points/balance", points.GetBalance)
		api.GET("/points/transactions", points.ListTransactions)
		api.POST("/points/redeem", points.RedeemPoints)

		api.GET("/coupons", coupons.ListCoupons)
		api.POST("/coupons", coupons.CreateCoupon)
		api.POST("/coupons/apply", coupons.ApplyCoupon)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/users", users.CreateUser)
		admin.POST("/orders", users.CreateOrder)
		admin.GET("/users/:id/balance", points.GetUserBalance)
		admin.POST("/points/award", points.AwardPoints)
		admin.POST("/points/transactions", points.CreateTransaction)
		admin.DELETE("/points/transactions/:id", points.DeleteTransaction)
		admin.POST("/coupons", coupons.CreateCoupon)
	}
}
