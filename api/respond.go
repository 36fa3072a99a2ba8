package api

import (
	"errors"
	"net/http"
	"strings"

	"learnhub/providers"
	"learnhub/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError bildet Service-Fehler auf HTTP-Status ab. Unbekannte Fehler werden geloggt
// und nur generisch gemeldet.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	var srcErr *providers.SourceError
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": clientMessage(err, services.ErrValidation)})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": clientMessage(err, services.ErrNotFound)})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": clientMessage(err, services.ErrConflict)})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": clientMessage(err, services.ErrUnauthorized)})
	case errors.Is(err, services.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": clientMessage(err, services.ErrUnavailable)})
	case errors.As(err, &srcErr):
		log.Warn("Externe Quelle fehlgeschlagen", zap.String("op", op), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, providers.ErrSourceDisabled) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": op + " failed: source " + srcErr.Source + " is unavailable"})
	default:
		log.Error("Request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

// clientMessage entfernt das Sentinel-Präfix, z.B. "not found: project x" -> "project x".
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return sentinel.Error()
}
