package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaker-service/internal/config"
	"quizmaker-service/internal/logging"
)

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"start", "migrate"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("port"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMigrateRequiresPostgres(t *testing.T) {
	err := runMigrations(context.Background(), config.Config{}, logging.Nop())
	assert.EqualError(t, err, "postgres url not configured")
}

func TestStartRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	err := runServer(context.Background(), filepath.Join(t.TempDir(), "none.yaml"), "0")
	require.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestServeReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	server := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), server, logging.Nop(), make(chan os.Signal))
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), taken.Addr().String())
	case <-time.After(5 * time.Second):
		t.Fatal("serve kept waiting after the listener failed to bind")
	}
}

func TestServeStopsOnSignal(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	stop := make(chan os.Signal, 1)
	stop <- os.Interrupt

	assert.NoError(t, serve(context.Background(), server, logging.Nop(), stop))
}
