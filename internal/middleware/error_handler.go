package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"jewelpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorCodeKey holds the domain error code of a failed request (ORNAMENT_ALREADY_SOLD,
// STORAGE_TIMEOUT, ...) so the request log can be filtered by it.
const ErrorCodeKey = "error_code"

const codeInternal = "INTERNAL"

// ErrorHandler answers errors attached with c.Error that no handler wrote a
// response for. Domain errors keep their status and code; anything else is a
// generic 500 and the cause only reaches the logs.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var ae *apierror.Error
		if errors.As(err, &ae) && ae.Kind != apierror.KindInternal {
			if !c.Writer.Written() {
				c.Set(ErrorCodeKey, ae.Code)
				c.AbortWithStatusJSON(ae.Kind.HTTPStatus(), apierror.FromError(ae))
			}
			return
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("unhandled error")

		if !c.Writer.Written() {
			c.Set(ErrorCodeKey, codeInternal)
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
		}
	}
}

// Recovery turns a panic into a 500. The stack is logged, never returned.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.Set(ErrorCodeKey, codeInternal)
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 4xx log at warn and 5xx at error, with
// the domain error code when the handler set one.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if code := c.GetString(ErrorCodeKey); code != "" {
			event = event.Str("error_code", code)
		}
		event.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
