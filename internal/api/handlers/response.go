// internal/api/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors onto HTTP statuses with a stable error
// code the UI can branch on.
func respondError(c *gin.Context, err error) {
	var ruleErr *domain.RuleError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "NOT_FOUND", "message": "resource not found"},
		})
	case errors.As(err, &ruleErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": gin.H{"code": ruleErr.Code, "message": ruleErr.Message},
		})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{"code": "CONFLICT", "message": "conflicting update"},
		})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL", "message": "internal error"},
		})
	}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "INVALID_ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
