package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
)

// errorBody is the JSON form of a failed request.
type errorBody struct {
	Code    errs.Code         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func statusOf(code errs.Code) int {
	switch code {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.ConstraintViolation, errs.InvalidArgument:
		return http.StatusBadRequest
	case errs.EmptyCart, errs.TotalMismatch, errs.InvalidTransition:
		return http.StatusConflict
	case errs.Cancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func bodyOf(err error) *errorBody {
	if err == nil {
		return nil
	}
	code := errs.CodeOf(err)
	b := &errorBody{Code: code, Message: err.Error()}
	var e *errs.Error
	if errors.As(err, &e) {
		b.Details = e.Details
	}
	return b
}

// fail writes err as {"error": {...}} with the status its code maps to.
func (s *Server) fail(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": bodyOf(err)})
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	s.fail(c, errs.New(errs.InvalidArgument, "http", msg))
}
