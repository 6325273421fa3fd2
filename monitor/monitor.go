package monitor

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"job-board-api/config"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

const maxLogTail = 256 << 10

type OutboxStatter interface {
	Stats(ctx context.Context) (*services.OutboxStats, error)
}

type ConnectionCounter interface {
	Count(userID uint) int
}

type Options struct {
	Token   string
	Outbox  OutboxStatter
	Clients ConnectionCounter
	LogPath string
}

var startedAt = time.Now()

// Register mounts /monitor/status and /logs. Both are skipped when no token is configured.
func Register(router gin.IRouter, opts Options) bool {
	if opts.Token == "" {
		return false
	}
	if opts.LogPath == "" {
		opts.LogPath = config.LogFilePath()
	}

	guard := func(c *gin.Context) {
		if c.Query("token") != opts.Token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}

	router.GET("/monitor/status", guard, func(c *gin.Context) {
		resp := gin.H{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		}
		if opts.Clients != nil {
			resp["websocket_clients"] = opts.Clients.Count(0)
		}
		if opts.Outbox != nil {
			stats, err := opts.Outbox.Stats(c.Request.Context())
			if err != nil {
				resp["status"] = "degraded"
				resp["outbox_error"] = err.Error()
			} else {
				resp["outbox"] = stats
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	router.GET("/logs", guard, func(c *gin.Context) {
		data, err := tail(opts.LogPath, maxLogTail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	})
	return true
}

func tail(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		if _, err := f.Seek(info.Size()-limit, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}
