package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/infra"
)

// Health reports service liveness plus the connectivity picture: whether the
// remote store is reachable and how many writes sit in the local queue. The
// process is healthy even while offline — that is the point of the queue.
func Health(probe *infra.Probe, gw *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		online := probe.Online(c.Request.Context())
		pending, err := gw.PendingCount(c.Request.Context())
		if err != nil {
			// Local queue unreadable means local durability is gone.
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "queue": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"online":  online,
			"pending": pending,
		})
	}
}

// OfflineStatus godoc
// @Summary      Connectivity and queue status
// @Tags         system
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.OfflineStatusResponse
// @Router       /v1/offline/status [get]
func OfflineStatus(probe *infra.Probe, gw *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := gw.PendingCount(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OfflineStatusResponse{
			Online:       probe.Online(c.Request.Context()),
			PendingCount: pending,
		})
	}
}

// DrainNow godoc
// @Summary      Force a queue drain
// @Description  Replays queued writes immediately instead of waiting for the periodic drain.
// @Tags         system
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int
// @Router       /v1/offline/drain [post]
func DrainNow(gw *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		applied, remaining := gw.Drain(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"applied": applied, "remaining": remaining})
	}
}
