package http_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/zkauth/adapters/events"
	"github.com/layer-3/zkauth/adapters/store"
	"github.com/layer-3/zkauth/adapters/tokenizer"
	"github.com/layer-3/zkauth/prover"
	"github.com/layer-3/zkauth/service"
	zkhttp "github.com/layer-3/zkauth/transport/http"
	"github.com/layer-3/zkauth/zkp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_ProverClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	st := store.NewMemoryStore()
	svc := service.NewAuthService(zkp.Default(), st, st, tokenizer.NewJWTTokenizer(key, "zkauth-e2e"), events.NopPublisher{})
	srv := httptest.NewServer(zkhttp.SetupRouter(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), "e2e"))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := prover.NewClient(srv.URL)

	params, err := client.FetchParams(ctx)
	require.NoError(t, err)
	client.Params = params

	require.NoError(t, client.Register(ctx, "alice", "correct horse battery staple"))

	session, err := client.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.AccessToken)

	again, err := client.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, session.SessionID, again.SessionID)

	_, err = client.Login(ctx, "alice", "wrong password")
	var apiErr *prover.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	_, err = client.Login(ctx, "bob", "whatever")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
