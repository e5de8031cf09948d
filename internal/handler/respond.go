package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/apperrors"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps err to a status and writes {"error": msg}. Internal
// causes are logged and never sent.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	appErr := apperrors.From(err)
	status := apperrors.HTTPStatus(appErr.Kind)

	if appErr.Kind == apperrors.KindInternal {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", requestIDFrom(c)),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: appErr.PublicMessage()})
}

// bindJSON decodes the body; a malformed body is a validation error
func bindJSON(c *gin.Context, target any) error {
	if err := c.ShouldBindJSON(target); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
