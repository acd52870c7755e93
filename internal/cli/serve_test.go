package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianhealey/booklist/internal/config"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "booklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWorkspaceSeedsControllers(t *testing.T) {
	path := writeSettings(t, `
id_scheme: counter
poster:
  max_bytes: 1024
seed:
  - title: Dune
    author: Herbert
  - title: Emma
    author: Austen
`)
	ws, err := loadWorkspace(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), ws.decoder.Limits().MaxBytes)

	ctrl := ws.newController()
	defer ctrl.Close()
	list := ctrl.Books()
	require.Len(t, list, 2)
	assert.Equal(t, "book-1", list[0].ID)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, "Emma", list[1].Title)

	// Each workspace gets its own copy.
	other := ws.newController()
	defer other.Close()
	other.Delete(other.Books()[0].ID)
	assert.Len(t, ctrl.Books(), 2)
}

func TestWorkspaceApply(t *testing.T) {
	ws, err := loadWorkspace(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAddr, ws.Settings().Addr)

	s := config.DefaultSettings()
	s.Poster.MaxDimension = 64
	s.Seed = []config.SeedBook{{Title: "Fresh"}}
	ws.apply(&s)

	assert.Equal(t, 64, ws.decoder.Limits().MaxDimension)
	ctrl := ws.newController()
	defer ctrl.Close()
	require.Len(t, ctrl.Books(), 1)
	assert.Equal(t, "Fresh", ctrl.Books()[0].Title)
}

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantAddr string
		wantMDNS bool
	}{
		{"file values kept", nil, "127.0.0.1:9999", true},
		{"addr overridden", []string{"--addr", ":7000"}, ":7000", true},
		{"mdns overridden", []string{"--mdns=false"}, "127.0.0.1:9999", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewServeCommand(&RootOptions{})
			require.NoError(t, cmd.ParseFlags(tt.args))

			s := config.DefaultSettings()
			s.Addr = "127.0.0.1:9999"
			s.MDNS = true
			applyServeFlags(cmd, &ServeOptions{Addr: flagString(t, cmd, "addr"), MDNS: flagBool(t, cmd, "mdns")}, &s)

			assert.Equal(t, tt.wantAddr, s.Addr)
			assert.Equal(t, tt.wantMDNS, s.MDNS)
		})
	}
}

func flagString(t *testing.T, cmd *cobra.Command, name string) string {
	t.Helper()
	v, err := cmd.Flags().GetString(name)
	require.NoError(t, err)
	return v
}

func flagBool(t *testing.T, cmd *cobra.Command, name string) bool {
	t.Helper()
	v, err := cmd.Flags().GetBool(name)
	require.NoError(t, err)
	return v
}

func TestServeShutsDownOnCancel(t *testing.T) {
	path := writeSettings(t, "session_ttl: 5m\n")

	var logs bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--config", path})
	cmd.SetErr(&logs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	assert.Contains(t, logs.String(), "booklist listening")
	assert.Contains(t, logs.String(), "shutdown complete")
}

func TestServeListenError(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--addr", "not-an-address", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on not-an-address")
}
