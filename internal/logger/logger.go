package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// New builds a zap logger: JSON production output in release mode, console output otherwise
func New(level, ginMode string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zapcfg := zap.NewDevelopmentConfig()
	if ginMode == gin.ReleaseMode {
		zapcfg = zap.NewProductionConfig()
	}
	zapcfg.Level = lvl

	return zapcfg.Build()
}

// RequestLogger logs one line per HTTP request and tags it with a request id
func RequestLogger(zl *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			zl.Error("request failed", fields...)
		case status >= 400:
			zl.Warn("request rejected", fields...)
		default:
			zl.Info("request handled", fields...)
		}
	}
}
