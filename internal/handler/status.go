// internal/handler/status.go

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qlog-io/qlog/internal/logger"
)

// destinationStatus is one entry in the status response.
type destinationStatus struct {
	Name    string `json:"name"`
	Pending int    `json:"pending"`
	Error   string `json:"error,omitempty"`
}

// NewStatusHandler creates a Gin handler reporting the backlog and last
// error of every managed destination.
func NewStatusHandler(manager *logger.Manager) gin.HandlerFunc {
	if manager == nil {
		panic("StatusHandler requires a non-nil Manager")
	}

	return func(c *gin.Context) {
		names := manager.Names()
		statuses := make([]destinationStatus, 0, len(names))
		for _, name := range names {
			lgr := manager.Get(name)
			if lgr == nil {
				continue
			}
			statuses = append(statuses, destinationStatus{
				Name:    name,
				Pending: lgr.Pending(),
				Error:   lgr.ErrorString(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"destinations": statuses})
	}
}
