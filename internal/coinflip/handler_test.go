package coinflip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutesAndSubscriptions(context.Background(), r.Group("/mymilios-api"), f.service, nil)
	return r
}

func serve(r *gin.Engine, method string, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const alicePath = "/mymilios-api/coinflip/0x00000000000000000000000000000000000a11ce"

func TestGetLobbyRoute(t *testing.T) {
	f := newFixture()
	f.openGame(2, bob, 20)

	w := serve(router(f), http.MethodGet, alicePath, "")
	require.Equal(t, http.StatusOK, w.Code)

	var lobby model.Lobby
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lobby))
	require.Len(t, lobby.Games, 1)
	assert.Equal(t, model.GameOpen, lobby.Games[0].Status)
}

func TestCreateGameRoute(t *testing.T) {
	f := newFixture()
	r := router(f)

	w := serve(r, http.MethodPost, alicePath+"/games", `{"tokenId": 42}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"createGame"}, f.signer.Methods())

	w = serve(r, http.MethodPost, alicePath+"/games", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJoinGameRoute(t *testing.T) {
	f := newFixture()
	f.openGame(2, bob, 20)
	r := router(f)

	w := serve(r, http.MethodPost, alicePath+"/games/x/join", `{"tokenId": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, alicePath+"/games/2/join", `{"tokenId": 1}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = serve(r, http.MethodPost, alicePath+"/games/2/join", `{"tokenId": 1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), joinInProgress)
}

func TestNotificationRoutes(t *testing.T) {
	f := newFixture()
	txHash := f.resolve(1, 3, alice, bob, alice)
	r := router(f)

	w := serve(r, http.MethodGet, alicePath+"/notifications?page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var notifications utils.PageResponse[model.Notification]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))
	require.Len(t, notifications.Items, 1)
	assert.Equal(t, int64(1), notifications.ItemCount)

	w = serve(r, http.MethodPut, alicePath+"/notifications/"+txHash.Hex()+"/resolved", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodPut, alicePath+"/notifications/0x12/resolved", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, alicePath+"/notifications", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, alicePath+"/notifications?page_size=2&page_token=4611686018427387904", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutesRejectBadAddress(t *testing.T) {
	w := serve(router(newFixture()), http.MethodGet, "/mymilios-api/coinflip/0xnope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPollerStopsOnCancel(t *testing.T) {
	f := newFixture()
	f.service.Lobby(context.Background(), alice)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewPoller(f.service, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.chain.Calls(coinFlipAddress, "getOpenGames") > 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
