package xfanout

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xlog"
	"github.com/trickstertwo/xlog/adapter/zerolog"
)

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.Use(zerolog.Config{
		MinLevel: xlog.LevelDebug,
		Console:  false,
		Writer:   &buf,
	})

	obs := LoggingObserver{Logger: logger}
	obs.OnNotice(Notice{Type: ListenerFailed, EventName: "sql.query", Err: errBoom})
	obs.OnNotice(Notice{Type: RegexPruned, EventName: "sql.query", Count: 2})

	out := buf.String()
	assert.Contains(t, out, "xfanout listener failed")
	assert.Contains(t, out, "xfanout notice")
	assert.Contains(t, out, "regex_pruned")

	// A nil logger is tolerated.
	LoggingObserver{}.OnNotice(Notice{Type: Subscribed})
}

func TestObserverPool_DropsWhenFull(t *testing.T) {
	pool := NewObserverPool(context.Background(), 1, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := ObserverFunc(func(n Notice) {
		if n.EventName == "first" {
			close(started)
			<-release
		}
	})
	obs := []Observer{blocking}

	pool.Notify(Notice{EventName: "first"}, obs)
	<-started
	pool.Notify(Notice{EventName: "queued"}, obs)
	pool.Notify(Notice{EventName: "dropped"}, obs)

	stats := pool.Stats()
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.Workers)
	assert.Equal(t, 1, stats.BufferSize)

	close(release)
	require.NoError(t, pool.Close(time.Second))
	assert.Equal(t, uint64(2), pool.Stats().Processed)

	// Closed pools ignore notices.
	pool.Notify(Notice{EventName: "late"}, obs)
	assert.Equal(t, uint64(1), pool.Stats().Dropped)
	require.NoError(t, pool.Close(time.Second))
}

func TestObserverPool_SurvivesPanickingObserver(t *testing.T) {
	pool := NewObserverPool(context.Background(), 1, 4)
	got := make(chan string, 1)

	pool.Notify(Notice{EventName: "x"}, []Observer{
		ObserverFunc(func(Notice) { panic("observer bug") }),
		ObserverFunc(func(n Notice) { got <- n.EventName }),
	})

	select {
	case name := <-got:
		assert.Equal(t, "x", name)
	case <-time.After(2 * time.Second):
		t.Fatal("second observer never ran")
	}
	require.NoError(t, pool.Close(time.Second))
}
