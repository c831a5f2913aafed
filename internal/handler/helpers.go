package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/middleware"
	"github.com/docask/docask/internal/pkg/errcode"
	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	code := errcode.ErrInternal
	msg := "internal error"
	switch {
	case errs.IsNotFound(err):
		code, msg = errcode.ErrNotFound, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		code, msg = errcode.ErrUnauthorized, err.Error()
	case errors.Is(err, errs.ErrForbidden):
		code, msg = errcode.ErrForbidden, err.Error()
	case errors.Is(err, errs.ErrConflict):
		code, msg = errcode.ErrConflict, err.Error()
	case errors.Is(err, errs.ErrUnsupportedFormat), errors.Is(err, errs.ErrUnsupportedEncoding):
		code, msg = errcode.ErrInvalidFile, err.Error()
	case errors.Is(err, errs.ErrPayloadTooLarge):
		code, msg = errcode.ErrFileTooLarge, err.Error()
	case errors.Is(err, errs.ErrEmptyDocument):
		code, msg = errcode.ErrEmptyDocument, err.Error()
	case errors.Is(err, errs.ErrInvalid):
		code, msg = errcode.ErrInvalid, err.Error()
	case errors.Is(err, errs.ErrIndexUnavailable):
		code, msg = errcode.ErrIndexUnavailable, "search index unavailable"
	case errors.Is(err, errs.ErrProvider):
		code, msg = errcode.ErrProviderFailed, "answer generation failed"
	}
	response.Error(c, code, msg)
}
