package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/flomo-mcp/pkg/config"
	"github.com/germanamz/flomo-mcp/pkg/notetool"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recorder collects request bodies received by a fake flomo webhook.
type recorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recorder) add(body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, body)
}

func (r *recorder) Bodies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

func newFlomoServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.add(string(data))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func testConfig(apiURL string) config.Config {
	return config.Config{APIURL: apiURL, LinkHost: notetool.DefaultLinkHost}
}

func TestReadContent(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		stdinTTY bool
		want     string
		wantErr  bool
	}{
		{name: "args joined", args: []string{"hello", "world"}, stdinTTY: true, want: "hello world"},
		{name: "dash reads stdin", args: []string{"-"}, stdin: "# title\n\nbody\n", stdinTTY: true, want: "# title\n\nbody"},
		{name: "piped stdin", stdin: "piped\r\n", want: "piped"},
		{name: "nothing on terminal", stdinTTY: true, wantErr: true},
		{name: "empty stdin", stdin: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readContent(tt.args, strings.NewReader(tt.stdin), tt.stdinTTY)
			if tt.wantErr {
				require.ErrorIs(t, err, errNoContent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunWrite_NonInteractive(t *testing.T) {
	srv, received := newFlomoServer(t, http.StatusOK, `{"memo":{"slug":"abc123"}}`)

	var out bytes.Buffer
	err := runWrite(context.Background(), testConfig(srv.URL), discardLogger(), nil, writeOptions{
		in:  strings.NewReader("#inbox remember the milk\n"),
		out: &out,
	})
	require.NoError(t, err)

	bodies := received.Bodies()
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"content":"#inbox remember the milk"}`, bodies[0])
	assert.Contains(t, out.String(), "memo_id=abc123")
}

func TestRunWrite_NotConfigured(t *testing.T) {
	var out bytes.Buffer
	err := runWrite(context.Background(), testConfig(""), discardLogger(), []string{"hello"}, writeOptions{
		stdinTTY: true,
		out:      &out,
	})
	require.ErrorIs(t, err, notetool.ErrNotConfigured)
	assert.Empty(t, out.String())
}

func TestRunWrite_RemoteError(t *testing.T) {
	srv, _ := newFlomoServer(t, http.StatusOK, `{"code":-1,"message":"rejected"}`)

	var out bytes.Buffer
	err := runWrite(context.Background(), testConfig(srv.URL), discardLogger(), []string{"hello"}, writeOptions{
		stdinTTY: true,
		out:      &out,
	})

	var remoteErr *notetool.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "rejected", remoteErr.Message)
}

func TestLoadDotEnvMissing(t *testing.T) {
	require.NoError(t, loadDotEnv(t.TempDir()+"/missing.env"))
}
