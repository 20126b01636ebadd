package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTempFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("content of "+name), 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestGraphConnector_Unconfigured(t *testing.T) {
	c := NewGraphConnector(GraphConfig{}, zap.NewNop())

	assert.False(t, c.Configured())

	res := c.Mirror(context.Background(), Job{
		RemoteBase: "Acme/123/ts",
		LocalPaths: writeTempFiles(t, "a.pdf"),
	})

	assert.Equal(t, Result{}, res)
}

func TestGraphConnector_Mirror(t *testing.T) {
	var uploads atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
			return
		}
		if r.Method == http.MethodPut {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Contains(t, r.URL.Path, "/drives/drive1/root:")
			assert.Contains(t, r.URL.Path, "Acme/123/ts")
			uploads.Add(1)
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewGraphConnector(GraphConfig{
		TenantID:      "tenant",
		ClientID:      "client",
		ClientSecret:  "secret",
		DriveID:       "drive1",
		AuthorityBase: srv.URL,
		GraphBase:     srv.URL,
	}, zap.NewNop())
	require.True(t, c.Configured())

	res := c.Mirror(context.Background(), Job{
		RemoteBase: "Acme/123/ts",
		LocalPaths: writeTempFiles(t, "a.pdf", "b.pdf"),
	})

	assert.Equal(t, 2, res.FilesUploaded)
	assert.Equal(t, int32(2), uploads.Load())
}

func TestGraphConnector_SwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewGraphConnector(GraphConfig{
		TenantID:      "tenant",
		ClientID:      "client",
		ClientSecret:  "secret",
		AuthorityBase: srv.URL,
		GraphBase:     srv.URL,
	}, zap.NewNop())

	res := c.Mirror(context.Background(), Job{
		RemoteBase: "Acme/123/ts",
		LocalPaths: writeTempFiles(t, "a.pdf"),
	})

	assert.Equal(t, Result{}, res)
}

func TestGraphConnector_TokenExchangeHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Identity endpoint that never answers until the test ends.
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewGraphConnector(GraphConfig{
		TenantID:      "tenant",
		ClientID:      "client",
		ClientSecret:  "secret",
		AuthorityBase: srv.URL,
		GraphBase:     srv.URL,
	}, zap.NewNop())
	require.True(t, c.Configured())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := c.Mirror(ctx, Job{
		RemoteBase: "Acme/123/ts",
		LocalPaths: writeTempFiles(t, "a.pdf"),
	})

	assert.Equal(t, Result{}, res)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSupabaseConnector_Unconfigured(t *testing.T) {
	c := NewSupabaseConnector(SupabaseConfig{}, zap.NewNop())

	assert.False(t, c.Configured())
	assert.Equal(t, Result{}, c.Mirror(context.Background(), Job{}))
	assert.Equal(t, 0, c.UploadFiles(context.Background(), "x", []string{"a"}))
}
