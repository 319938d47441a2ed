package remote_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/engine/remote"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterPublishesToConnectedSpectator(t *testing.T) {
	b := remote.NewBroadcaster()

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server goroutine a moment to register the connection before
	// publishing; Publish snapshots its target list under lock.
	time.Sleep(10 * time.Millisecond)

	e2e4, err := board.ParseMove("e2e4")
	require.NoError(t, err)

	b.Publish(context.Background(), search.Result{
		PV:    []board.Move{e2e4},
		Score: eval.Score(35),
		Depth: 4 * search.OnePly,
		Nodes: 1234,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got remote.Update
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, 4, got.Depth)
	require.Equal(t, 35, got.Score)
	require.Equal(t, uint64(1234), got.Nodes)
	require.Len(t, got.PV, 1)
}
