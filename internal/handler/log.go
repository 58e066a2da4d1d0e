// internal/handler/log.go

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qlog-io/qlog/internal/config"
	"github.com/qlog-io/qlog/internal/filter"
	"github.com/qlog-io/qlog/internal/logger"
	"github.com/qlog-io/qlog/internal/truncate"
	"github.com/qlog-io/qlog/internal/validation"
)

// LogRequestBody defines the structure for the log endpoint request body
type LogRequestBody struct {
	Message     string `json:"message" binding:"required"`
	Level       string `json:"level"`       // INFO, DEBUG, WARNING, FATAL; default INFO
	Destination string `json:"destination"` // destination name; default first enabled
}

// LogHandlerDependencies holds dependencies for the log handler
type LogHandlerDependencies struct {
	LoggerManager *logger.Manager
	Filter        *filter.Filter
	Config        *config.Config
	AppLogger     *logger.AppLogger
}

// NewLogHandler creates a Gin handler for the log ingest endpoint. The sink
// is best-effort: malformed or filtered requests still get 200, with the
// outcome in the X-Log-Status header, so misbehaving producers can never
// distinguish themselves from healthy ones.
func NewLogHandler(deps LogHandlerDependencies) gin.HandlerFunc {
	if deps.LoggerManager == nil {
		panic("LogHandler requires a non-nil LoggerManager")
	}
	if deps.Filter == nil {
		panic("LogHandler requires a non-nil Filter")
	}
	if deps.Config == nil {
		panic("LogHandler requires a non-nil Config")
	}
	if deps.AppLogger == nil {
		panic("LogHandler requires a non-nil AppLogger")
	}

	var maxBodySize int64
	if deps.Config.Server.RequestLimits.MaxBodySize != "" {
		// Pre-validated by config loading
		size, err := config.ParseSize(deps.Config.Server.RequestLimits.MaxBodySize)
		if err == nil {
			maxBodySize = size
		}
	}

	return func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)

		// Limit request body size BEFORE parsing JSON
		if maxBodySize > 0 {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodySize)
		}

		var reqBody LogRequestBody
		if err := ctx.ShouldBindJSON(&reqBody); err != nil {
			deps.AppLogger.Warn("Log Handler: JSON binding error: %v", err)
			ctx.Header("X-Log-Status", "error")
			return // StatusOK is already set
		}

		if err := validation.IsValidMessage(reqBody.Message, validation.DefaultMaxMessageLength); err != nil {
			deps.AppLogger.Warn("Log Handler: invalid message: %v", err)
			ctx.Header("X-Log-Status", "error")
			return
		}
		message := validation.SanitizeMessage(reqBody.Message)
		message = truncate.String(message, validation.DefaultMaxMessageLength)

		level := logger.LevelInfo
		if reqBody.Level != "" {
			parsed, err := logger.ParseLevel(reqBody.Level)
			if err != nil {
				deps.AppLogger.Warn("Log Handler: %v", err)
				ctx.Header("X-Log-Status", "error")
				return
			}
			level = parsed
		}

		if !deps.Filter.Allow(message, level) {
			ctx.Header("X-Log-Status", "ignored")
			return
		}

		name := reqBody.Destination
		if name == "" {
			name = deps.LoggerManager.DefaultName()
		}
		lgr := deps.LoggerManager.Get(name)
		if lgr == nil {
			deps.AppLogger.Warn("Log Handler: unknown destination '%s'", name)
			ctx.Header("X-Log-Status", "error")
			return
		}

		lgr.AddMessage(message, level)
		ctx.Header("X-Log-Status", "success")
	}
}
