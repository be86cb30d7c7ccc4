package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccessLog struct {
	Logger *zap.Logger
}

func NewAccessLog(logger *zap.Logger) *AccessLog {
	return &AccessLog{Logger: logger}
}

// Middleware writes one entry per served request.
func (l *AccessLog) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status_code", c.Writer.Status()),
			zap.Int("body_size", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", duration),
		}

		if len(c.Errors) > 0 {
			l.Logger.Error("HTTP request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}

		l.Logger.Info("HTTP request completed", fields...)
	}
}
