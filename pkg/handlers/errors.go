package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/sirupsen/logrus"
)

// respondError maps ledger error kinds to HTTP statuses. Client errors are
// logged at Warn, everything else at Error with a generic message.
func respondError(c *gin.Context, op string, fields logrus.Fields, err error, internalMsg string) {
	log := logrus.WithFields(fields)

	var status int
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusUnprocessableEntity
	default:
		log.WithError(err).Error(op + ": " + internalMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
		return
	}

	log.Warn(op + ": " + err.Error())
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logrus.WithField("error", err).Warn(op + ": Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}
