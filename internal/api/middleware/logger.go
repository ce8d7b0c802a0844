package middleware

import (
	"fmt"
	"strings"
	"time"

	"stride/internal/logger"

	"github.com/gin-gonic/gin"
)

type logWriter struct {
	logger *logger.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Logger writes one access line per request through the application logger.
// Health and metrics requests are skipped.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    logWriter{logger: logger},
		SkipPaths: []string{"/health", "/metrics"},
		Formatter: func(param gin.LogFormatterParams) string {
			line := fmt.Sprintf("[%s] %s %s %d %s %s",
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.StatusCode,
				param.Latency,
				param.ClientIP,
			)
			if param.ErrorMessage != "" {
				line += " " + strings.TrimSpace(param.ErrorMessage)
			}
			return line + "\n"
		},
	})
}
