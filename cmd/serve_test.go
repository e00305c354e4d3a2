package cmd

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRunServer(t *testing.T) {
	t.Run("Should shut down cleanly when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
		done := make(chan error, 1)
		go func() { done <- runServer(ctx, srv, zap.NewNop()) }()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
	t.Run("Should report listen failures", func(t *testing.T) {
		srv := &http.Server{Addr: "256.0.0.1:bad", ReadHeaderTimeout: time.Second}
		err := runServer(context.Background(), srv, zap.NewNop())
		assert.ErrorContains(t, err, "server failed")
	})
}
