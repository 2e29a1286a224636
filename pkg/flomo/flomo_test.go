package flomo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api url is required")
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/iwh/abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")
}

func TestWriteNote_PostsJSON(t *testing.T) {
	var (
		gotMethod string
		gotType   string
		gotBody   map[string]any
	)

	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")

		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"memo":{"slug":"abc123"}}`))
	})

	c, err := New(srv.URL)
	require.NoError(t, err)

	res, err := c.WriteNote(context.Background(), "# hello\n\n- world")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"content": "# hello\n\n- world"}, gotBody)

	slug, ok := res.Slug()
	assert.True(t, ok)
	assert.Equal(t, "abc123", slug)
}

func TestWriteNote_EmptyContent(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.WriteNote(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int32(0), hits.Load())
}

func TestWriteNote_ServerError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.WriteNote(context.Background(), "note")
	require.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Contains(t, err.Error(), "500 Internal Server Error")
}

func TestWriteNote_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.WriteNote(context.Background(), "note")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestWriteNote_ContextCancelled(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.WriteNote(ctx, "note")
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteNote_CustomHTTPClient(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	var used atomic.Bool
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used.Store(true)
		return http.DefaultTransport.RoundTrip(r)
	})}

	c, err := New(srv.URL, WithHTTPClient(hc))
	require.NoError(t, err)

	_, err = c.WriteNote(context.Background(), "note")
	require.NoError(t, err)
	assert.True(t, used.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
