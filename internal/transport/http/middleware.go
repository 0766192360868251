package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request, at a level chosen by the
// response status. Paths in skip are not logged.
func RequestLogger(logger logrus.FieldLogger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipped[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"route":       c.FullPath(),
			"status":      status,
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
			"bytes_sent":  c.Writer.Size(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last().Err)
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("server error")
		case status >= http.StatusBadRequest:
			entry.Warn("client error")
		default:
			entry.Info("request")
		}
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"panic":       fmt.Sprint(r),
					"stack_trace": string(debug.Stack()),
					"method":      c.Request.Method,
					"path":        c.Request.URL.Path,
				}).Error("recovered from panic")
				respondError(c, fmt.Errorf("panic: %v", r))
			}
		}()
		c.Next()
	}
}
