package folio

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var builds atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func() error {
			builds.Add(1)
			return nil
		}, nil)
	}()

	i := 0
	require.Eventually(t, func() bool {
		// leave the debounce interval quiet between writes
		if i%5 == 0 {
			_ = os.WriteFile(filepath.Join(dir, "blog", "post.md"), []byte{byte(i)}, 0644)
		}
		i++
		return builds.Load() > 0
	}, 10*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchSerializesRebuilds(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var running, peak, builds atomic.Int32
	slow := func() error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(1500 * time.Millisecond)
		running.Add(-1)
		builds.Add(1)
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, slow, nil)
	}()

	// each write lands after the debounce interval but within a rebuild
	for i := 0; i < 6; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "content.json"), []byte{byte(i)}, 0644))
		time.Sleep(700 * time.Millisecond)
	}
	require.Eventually(t, func() bool {
		return builds.Load() >= 2
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	require.EqualValues(t, 1, peak.Load(), "rebuilds overlapped")
	require.EqualValues(t, 0, running.Load(), "Watch returned during a rebuild")
}
