package icp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainadmin/internal/config"
)

const filed = `{"success":true,"domain":"baidu.com","info":{"name":"北京百度网讯科技有限公司","nature":"企业","icp":"京ICP证030173号-1","title":"百度","time":"2023-06-30"},"extra":1}`

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Query().Get("url") {
		case "baidu.com":
			w.Write([]byte(filed))
		case "broken.example":
			w.WriteHeader(http.StatusBadGateway)
		case "garbage.example":
			w.Write([]byte("<html>"))
		default:
			w.Write([]byte(`{"success":false,"message":"未备案"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(config.ICPConfig{Endpoint: srv.URL + "/api/icp"})
	require.NoError(t, err)
	defer c.Close()

	rec, err := c.Lookup(context.Background(), "baidu.com")
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.Equal(t, "京ICP证030173号-1", rec.Info.ICP)
	assert.Equal(t, "百度", rec.Info.Title)
	assert.Contains(t, string(rec.Raw), `"extra":1`)
}

func TestLookup_NotFound(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(config.ICPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	rec, err := c.Lookup(context.Background(), "unfiled.example")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "未备案")
	require.NotNil(t, rec)
	assert.False(t, rec.Success)
}

func TestLookup_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(config.ICPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "broken.example")
	assert.ErrorContains(t, err, "status 502")

	_, err = c.Lookup(context.Background(), "garbage.example")
	assert.ErrorContains(t, err, "decode")
}

func TestLookup_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(config.ICPConfig{Endpoint: srv.URL, CacheDir: t.TempDir(), CacheTTL: "1h"})
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 3; i++ {
		rec, err := c.Lookup(context.Background(), "baidu.com")
		require.NoError(t, err)
		assert.Equal(t, "百度", rec.Info.Title)
	}
	assert.EqualValues(t, 1, hits.Load())

	// key is case-insensitive
	_, err = c.Lookup(context.Background(), "BAIDU.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestLookup_RateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(config.ICPConfig{Endpoint: srv.URL, Rate: 0.1, Burst: 1})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "baidu.com")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Lookup(ctx, "baidu.com")
	assert.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.ICPConfig{})
	assert.Error(t, err)

	_, err = NewClient(config.ICPConfig{Endpoint: "http://x", CacheDir: t.TempDir(), CacheTTL: "soon"})
	assert.Error(t, err)
}
