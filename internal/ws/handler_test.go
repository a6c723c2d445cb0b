package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLobbies struct{}

func (staticLobbies) Lobby(_ context.Context, player common.Address) model.Lobby {
	return model.Lobby{Player: player.Hex(), UnresolvedCount: 2}
}

func TestServeCoinFlipStreamsLobby(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/mymilios-api"), staticLobbies{}, nil)
	server := httptest.NewServer(router)
	defer server.Close()

	player := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/mymilios-api/ws/coinflip/" + player.Hex()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var snapshot model.Lobby
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, player.Hex(), snapshot.Player)
	assert.Equal(t, 2, snapshot.UnresolvedCount)

	hub := ws.NewNotificationHub()
	topic := ws.CoinFlipTopic(player)
	require.Eventually(t, func() bool { return hub.ListenerCount(topic) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(topic, model.Lobby{Player: player.Hex(), UnresolvedCount: 0, HistoryError: "rpc down"})

	var update model.Lobby
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "rpc down", update.HistoryError)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")

	assert.True(t, checkOrigin(nil)(req))
	assert.False(t, checkOrigin([]string{"https://mymilios.xyz"})(req))

	req.Header.Set("Origin", "https://mymilios.xyz")
	assert.True(t, checkOrigin([]string{"https://mymilios.xyz"})(req))
}
