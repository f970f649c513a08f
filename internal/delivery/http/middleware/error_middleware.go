package middleware

import (
	"errors"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, http.StatusBadRequest, "Request validation failed", response.ErrorBody{
				Kind:    string(apperror.KindValidation),
				Details: validation.FormatValidationErrors(err),
			})
			return
		}

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}
		if appErr.Kind == apperror.KindInternal {
			// Internal causes stay in the log, never in the response.
			logger.Log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"error", appErr.Err,
			)
			response.Error(c, appErr.Code(), "An unexpected error occurred. Please try again later.", response.ErrorBody{Kind: string(appErr.Kind)})
			return
		}
		response.Error(c, appErr.Code(), appErr.Message, response.ErrorBody{Kind: string(appErr.Kind), Reason: appErr.Reason})
	}
}
