package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	ledger *ledger.Service
}

func NewUserHandler(svc *ledger.Service) *UserHandler {
	return &UserHandler{ledger: svc}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, "CreateUser", &req) {
		return
	}

	user, err := h.ledger.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreateUser", logrus.Fields{"user_id": req.ID}, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, "CreateOrder", &req) {
		return
	}

	order, err := h.ledger.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreateOrder", logrus.Fields{
			"order_id": req.ID,
			"user_id":  req.UserID,
		}, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, order)
}
