package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/zkauth/prover"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Addr:                 "127.0.0.1:0",
		Issuer:               "zkauth-test",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		StoreDriver:          StoreDriverMemory,
		ChallengeTTL:         time.Minute,
		SessionTTL:           time.Minute,
		AuthIDLength:         16,
		SessionIDLength:      32,
		HousekeepingInterval: time.Minute,
		ShutdownGracePeriod:  time.Second,
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "etcd"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestApplication_MemoryStore(t *testing.T) {
	app, err := New(testConfig())
	require.NoError(t, err)
	require.NotNil(t, app.housekeepingService)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	app, err := New(testConfig())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	client := prover.NewClient("http://" + ln.Addr().String())
	require.NoError(t, client.Register(ctx, "alice", "pw"))
	session, err := client.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not shut down")
	}
}

func TestApplication_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.StoreDriver = StoreDriverRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	app, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, app.housekeepingService, "redis expires challenges itself")

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := prover.NewClient(srv.URL)
	require.NoError(t, client.Register(ctx, "alice", "pw"))
	_, err = client.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	assert.True(t, mr.Exists("zkauth:user:alice"))
	assert.True(t, mr.Exists("zkauth.events"), "events are appended to the redis stream")

	require.NoError(t, app.Shutdown())
}

func TestApplication_RedisServeAndShutdown(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.StoreDriver = StoreDriverRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	app, err := New(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	client := prover.NewClient("http://" + ln.Addr().String())
	require.NoError(t, client.Register(ctx, "alice", "pw"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err, "graceful shutdown in redis mode must succeed")
	case <-time.After(5 * time.Second):
		t.Fatal("application did not shut down")
	}
}

func TestApplication_RunListenFailureReleasesStore(t *testing.T) {
	mr := miniredis.RunT(t)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	cfg := testConfig()
	cfg.Addr = busy.Addr().String()
	cfg.StoreDriver = StoreDriverRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	app, err := New(cfg)
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)

	err = app.redis.Ping(context.Background()).Err()
	require.ErrorIs(t, err, redis.ErrClosed, "the redis client is closed when the listener cannot be opened")
}

func TestApplication_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.StoreDriver = StoreDriverRedis
	cfg.RedisURL = "redis://" + addr

	_, err := New(cfg)
	require.Error(t, err)
}
