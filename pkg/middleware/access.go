package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/mintrelay/pkg/logger"
	"github.com/nao1215/mintrelay/pkg/metrics"
)

// RequestLogger はリクエストごとにアクセスログを出力するGinミドルウェアを返す。
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info(c.Request.Context(), "request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
			logger.String("request_id", GetRequestID(c)),
		)
	}
}

// Metrics はHTTPリクエストの件数と所要時間を記録するGinミドルウェアを返す。
// ルートラベルにはパスパターンを使用し、生のパスは使用しない。
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
