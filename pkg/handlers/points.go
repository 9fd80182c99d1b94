package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/middleware"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/sirupsen/logrus"
)

type PointsHandler struct {
	ledger *ledger.Service
}

func NewPointsHandler(svc *ledger.Service) *PointsHandler {
	return &PointsHandler{ledger: svc}
}

func (h *PointsHandler) GetBalance(c *gin.Context) {
	h.balance(c, middleware.UserID(c))
}

func (h *PointsHandler) GetUserBalance(c *gin.Context) {
	h.balance(c, c.Param("id"))
}

func (h *PointsHandler) balance(c *gin.Context, userID string) {
	balance, err := h.ledger.GetUserPointBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetBalance", logrus.Fields{"user_id": userID}, err, "Failed to get point balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *PointsHandler) ListTransactions(c *gin.Context) {
	userID := middleware.UserID(c)
	txs, err := h.ledger.ListUserTransactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListTransactions", logrus.Fields{"user_id": userID}, err, "Failed to list point transactions")
		return
	}
	if txs == nil {
		txs = make([]models.PointTransaction, 0)
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func (h *PointsHandler) RedeemPoints(c *gin.Context) {
	var req models.RedeemPointsRequest
	if !bindJSON(c, "RedeemPoints", &req) {
		return
	}

	userID := middleware.UserID(c)
	tx, err := h.ledger.RedeemPoints(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "RedeemPoints", logrus.Fields{
			"user_id": userID,
			"points":  req.Points,
		}, err, "Failed to redeem points")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *PointsHandler) AwardPoints(c *gin.Context) {
	var req models.AwardPointsRequest
	if !bindJSON(c, "AwardPoints", &req) {
		return
	}

	tx, err := h.ledger.AwardPoints(c.Request.Context(), req)
	if err != nil {
		respondError(c, "AwardPoints", logrus.Fields{
			"user_id": req.UserID,
			"points":  req.Points,
		}, err, "Failed to award points")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *PointsHandler) CreateTransaction(c *gin.Context) {
	var req models.CreatePointTransactionRequest
	if !bindJSON(c, "CreateTransaction", &req) {
		return
	}

	tx, err := h.ledger.CreatePointTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreateTransaction", logrus.Fields{
			"user_id": req.UserID,
			"type":    req.Type,
		}, err, "Failed to create point transaction")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *PointsHandler) DeleteTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		logrus.WithField("id", c.Param("id")).Warn("DeleteTransaction: Invalid transaction id")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
		return
	}

	if err := h.ledger.DeletePointTransaction(c.Request.Context(), id); err != nil {
		respondError(c, "DeleteTransaction", logrus.Fields{"id": id}, err, "Failed to delete point transaction")
		return
	}
	c.Status(http.StatusNoContent)
}
