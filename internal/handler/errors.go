package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"bellissimo/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses. Configuration errors are a 500
// with code "configuration"; unclassified errors are logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidState, domain.KindAlreadyExists:
		status = http.StatusConflict
	case domain.KindConfiguration:
		slog.Error("configuration error", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": err.Error(), "code": string(domain.KindConfiguration)})
		return
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if f := domain.FieldOf(err); f != "" {
		body["field"] = f
	}
	c.JSON(status, body)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return uint(id), true
}
