package handlers

import (
	"errors"
	"net/http"
	"strings"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// mapServiceError renders err with the status its sentinel maps to. Only
// the caller-facing part of the message is exposed.
func (h *Handler) mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, e.Message(err))
	case errors.Is(err, e.ErrNotFound):
		abortWithError(c, http.StatusNotFound, e.Message(err))
	case errors.Is(err, e.ErrConflict):
		abortWithError(c, http.StatusConflict, e.Message(err))
	case errors.Is(err, e.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, e.Message(err))
	default:
		h.logger.Error("Internal server error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		abortWithError(c, http.StatusInternalServerError, "error interno")
	}
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// pathID parses the :id segment, answering 400 itself when it is not a
// positive integer.
func pathID(c *gin.Context) (uint, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "id inválido")
		return 0, false
	}
	return id, true
}

// parseID accepts only canonical positive decimal ids. cast alone would
// read "010" as octal and "0x3" as hex.
func parseID(raw string) (uint, bool) {
	if raw == "" || raw[0] == '0' || strings.Trim(raw, "0123456789") != "" {
		return 0, false
	}
	id, err := cast.ToUintE(raw)
	return id, err == nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, key+" inválido")
		return nil, false
	}
	return &v, true
}

// queryID parses an optional numeric id query parameter.
func queryID(c *gin.Context, key string) (*uint, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	v, ok := parseID(raw)
	if !ok {
		abortWithError(c, http.StatusBadRequest, key+" inválido")
		return nil, false
	}
	return &v, true
}

// bindJSON decodes the body into dst, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			abortWithError(c, http.StatusBadRequest, fe.msg)
			return false
		}
		abortWithError(c, http.StatusBadRequest, "JSON inválido")
		return false
	}
	return true
}
