package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"job-board-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct{}

func (fakeOutbox) Stats(context.Context) (*services.OutboxStats, error) {
	return &services.OutboxStats{Pending: 2, Dispatched: 5, Failed: 1}, nil
}

type fakeClients int

func (f fakeClients) Count(uint) int { return int(f) }

func newRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, opts)
	return r
}

func TestRegisterWithoutTokenIsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	assert.False(t, Register(r, Options{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitor/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusRequiresToken(t *testing.T) {
	r := newRouter(t, Options{Token: "t0ken"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitor/status?token=wrong", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusReportsOutboxAndClients(t *testing.T) {
	r := newRouter(t, Options{Token: "t0ken", Outbox: fakeOutbox{}, Clients: fakeClients(3)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitor/status?token=t0ken", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string               `json:"status"`
		Clients int                  `json:"websocket_clients"`
		Outbox  services.OutboxStats `json:"outbox"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 3, body.Clients)
	assert.Equal(t, int64(2), body.Outbox.Pending)
	assert.Equal(t, int64(1), body.Outbox.Failed)
}

func TestLogsReturnsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	r := newRouter(t, Options{Token: "t0ken", LogPath: path})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?token=t0ken", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "line two")
}

func TestTailLimitsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	data, err := tail(path, 4)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(data))
}
