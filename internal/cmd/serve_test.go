package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinex/ordinex/internal/health"
	"github.com/ordinex/ordinex/internal/log"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/server"
)

func TestServeUntilDoneStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	a := &app{logger: log.New(log.Config{Level: log.LevelInfo, Format: log.FormatJSON, Output: log.NewOutput(&logs)})}

	p, err := pipeline.New(pipeline.Options{Logger: a.logger})
	require.NoError(t, err)

	srv := server.NewServer(server.Deps{
		Probes:   health.NewProbeManager("test"),
		Pipeline: p,
		Logger:   a.logger,
	}, server.Config{Address: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, time.Second, a) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, srv.IsShuttingDown())
	assert.Contains(t, logs.String(), "server stopped")
}

func TestServeUntilDoneReportsListenError(t *testing.T) {
	a := &app{logger: log.New(log.Config{Output: log.NewOutput(&bytes.Buffer{})})}
	p, err := pipeline.New(pipeline.Options{})
	require.NoError(t, err)

	srv := server.NewServer(server.Deps{Probes: health.NewProbeManager("test"), Pipeline: p, Logger: a.logger},
		server.Config{Address: "256.0.0.1:bad"})

	err = serveUntilDone(context.Background(), srv, time.Second, a)
	assert.ErrorContains(t, err, "server error")
}
