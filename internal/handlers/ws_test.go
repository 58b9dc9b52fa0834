package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/api/v1/ws"

	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return conn
}

func TestWebSocketSendsWelcome(t *testing.T) {
	r := setupTest(t)

	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server.URL)
	defer conn.Close()

	var welcome map[string]string
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome["type"])
}

func TestWebSocketReleasesGoroutinesOnDisconnect(t *testing.T) {
	r := setupTest(t)

	server := httptest.NewServer(r)
	defer server.Close()

	before := runtime.NumGoroutine()

	conn := dialWS(t, server.URL)

	var welcome map[string]string
	require.NoError(t, conn.ReadJSON(&welcome))

	require.NoError(t, conn.Close())

	// The connection handler and its ping loop must both exit once the
	// client goes away.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+1
	}, 2*time.Second, 10*time.Millisecond)
}
