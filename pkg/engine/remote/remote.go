// Package remote broadcasts live search progress to websocket spectators,
// alongside whatever UCI/Xboard shim is driving the engine.
package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kref/citadel/pkg/search"
	"github.com/seekerror/logw"
)

// Update is one root iteration's progress, serialized to spectators as
// JSON.
type Update struct {
	Depth int      `json:"depth"`
	Score int      `json:"score"`
	Mate  int      `json:"mate,omitempty"`
	Nodes uint64   `json:"nodes"`
	PV    []string `json:"pv"`
}

func newUpdate(res search.Result) Update {
	u := Update{
		Depth: res.Depth / search.OnePly,
		Score: int(res.Score),
		Nodes: res.Nodes,
	}
	if res.Score.IsMateScore() {
		moves := (res.Score.MateDistance() + 1) / 2
		if res.Score < 0 {
			moves = -moves
		}
		u.Mate = moves
	}
	for _, mv := range res.PV {
		u.PV = append(u.PV, mv.String())
	}
	return u
}

// Broadcaster fans out search.Result updates to every connected websocket
// client. One Broadcaster is shared by all of an engine's analysis
// sessions; it never blocks Publish on a slow or dead reader.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewBroadcaster creates an empty Broadcaster. The returned value's
// Handler should be mounted on an HTTP mux; Publish is called by the
// engine's search loop as each iteration completes.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			// Spectators are same-origin or CLI-launched local tools, not
			// browser pages from arbitrary third-party origins; a custom
			// CheckOrigin is left for whatever embeds this package behind a
			// real ingress.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: map[*websocket.Conn]bool{},
	}
}

// Handler upgrades incoming HTTP requests to websocket connections and
// registers them as broadcast targets until the client disconnects.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logw.Errorf(r.Context(), "remote: upgrade failed: %v", err)
			return
		}

		b.mu.Lock()
		b.conns[conn] = true
		b.mu.Unlock()

		// The only traffic on this connection flows server -> client; block
		// on reads solely to detect the peer closing the socket.
		go func() {
			defer b.drop(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.conns, conn)
	b.mu.Unlock()
	_ = conn.Close()
}

// Publish broadcasts res to every connected spectator. A write failure on
// any one connection drops that connection without affecting the rest.
func (b *Broadcaster) Publish(ctx context.Context, res search.Result) {
	data, err := json.Marshal(newUpdate(res))
	if err != nil {
		logw.Errorf(ctx, "remote: marshal update: %v", err)
		return
	}

	b.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		targets = append(targets, conn)
	}
	b.mu.Unlock()

	for _, conn := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logw.Warningf(ctx, "remote: write failed, dropping spectator: %v", err)
			b.drop(conn)
		}
	}
}

// Forward subscribes to a result channel (as returned by engine.Analyze)
// and republishes every result until the channel closes. It runs
// synchronously; callers that want this concurrent with consuming the
// channel themselves should fork results upstream instead.
func Forward(ctx context.Context, b *Broadcaster, out <-chan search.Result) {
	for res := range out {
		b.Publish(ctx, res)
	}
}
