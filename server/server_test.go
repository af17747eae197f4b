package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zibamira/CTCoral-CoDA/provider"
	"github.com/zibamira/CTCoral-CoDA/session"
)

func startTestServer(t *testing.T) (*Server, *session.Application, *websocket.Conn) {
	t.Helper()

	p := provider.NewRandom(7)
	app := session.New(zap.NewNop().Sugar(), p)
	require.NoError(t, app.Reload())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go app.Run(ctx)

	s := New(zap.NewNop().Sugar(), app, 0)
	go s.clientLoop()
	t.Cleanup(s.Close)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebsocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return s, app, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestClientReceivesSnapshotOnConnect(t *testing.T) {
	_, _, conn := startTestServer(t)

	first := readMessage(t, conn)
	second := readMessage(t, conn)

	assert.Equal(t, "replace", first["type"])
	assert.Equal(t, "vertices", first["sink"])
	assert.Equal(t, "replace", second["type"])
	assert.Equal(t, "edges", second["sink"])
	assert.EqualValues(t, 100, first["nrows"])
}

func TestSelectionBroadcast(t *testing.T) {
	_, app, conn := startTestServer(t)
	readMessage(t, conn)
	readMessage(t, conn)

	app.VertexSink().SetSelected([]int{1, 2, 3})

	msg := readMessage(t, conn)
	assert.Equal(t, "selection", msg["type"])
	assert.Equal(t, "vertices", msg["sink"])
	assert.Len(t, msg["indices"], 3)
}

func TestInboundSelectionReachesSink(t *testing.T) {
	_, app, conn := startTestServer(t)
	readMessage(t, conn)
	readMessage(t, conn)

	payload := `{"type":"selection","sink":"vertices","indices":[4,5]}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	require.Eventually(t, func() bool {
		return app.VertexSink().Selected().Cardinality() == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, app.VertexSink().Selected().Contains(4))
}

func TestMultilineSelectionNormalized(t *testing.T) {
	_, app, conn := startTestServer(t)
	readMessage(t, conn)
	readMessage(t, conn)

	payload := `{"type":"selection","sink":"edges","line_indices":{"7":[0],"2":[0,1],"x":[0]}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	require.Eventually(t, func() bool {
		return app.EdgeSink().Selected().Cardinality() == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{2, 7}, app.EdgeSink().Selected().Indices())
}

func TestMenusEndpoint(t *testing.T) {
	s, _, _ := startTestServer(t)

	ts := httptest.NewServer(http.HandlerFunc(s.handleMenus))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	var menus map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&menus))
	assert.NotEmpty(t, menus["color"])
	assert.NotEmpty(t, menus["marker"])
}

func TestDisconnectAfterShutdownDoesNotBlock(t *testing.T) {
	s, _, conn := startTestServer(t)
	readMessage(t, conn)
	readMessage(t, conn)

	s.Close()

	c := newClient(s, conn)
	done := make(chan struct{})
	go func() {
		c.disconnect()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect blocked after shutdown")
	}
}

func TestPatchBroadcast(t *testing.T) {
	_, app, conn := startTestServer(t)
	readMessage(t, conn)
	readMessage(t, conn)

	values := make([]any, app.VertexSink().NumRows())
	for i := range values {
		values[i] = "#ff0000"
	}
	app.VertexSink().SetColumn("coda:color:glyph", values)

	msg := readMessage(t, conn)
	assert.Equal(t, "patch", msg["type"])
	assert.Equal(t, "coda:color:glyph", msg["column"])
}
