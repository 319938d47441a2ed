package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/kref/citadel/pkg/engine"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/require"
)

// TestWithObserverSeesEveryResult checks that an engine.WithObserver
// callback is invoked for each search.Result Analyze produces, and that
// the caller's own channel still receives the identical sequence
// (pkg/engine/remote.Broadcaster.Publish is the production use of this
// hook, mirroring results to websocket spectators).
func TestWithObserverSeesEveryResult(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var seen []search.Result

	e := engine.New(ctx, "test", "test", searchctl.Iterative{}, engine.WithObserver(func(_ context.Context, res search.Result) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, res)
	}))
	require.NoError(t, e.Reset(ctx, "4k3/8/8/8/8/8/8/4K3 w - - 0 1"))

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(3))})
	require.NoError(t, err)

	var forwarded []search.Result
	for res := range out {
		forwarded = append(forwarded, res)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, len(forwarded), len(seen))
	require.NotEmpty(t, seen)
}
