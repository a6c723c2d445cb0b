package ws

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mymilios/mymilios-backend/internal/pkg/middleware"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/mymilios/mymilios-backend/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

type LobbyProvider interface {
	Lobby(ctx context.Context, player common.Address) model.Lobby
}

type wsHandler struct {
	notificationHub *ws.WebSocketNotificationHub
	lobbies         LobbyProvider
	upgrader        websocket.Upgrader
}

func RegisterRoutes(rg *gin.RouterGroup, lobbies LobbyProvider, allowedOrigins []string) {
	handler := wsHandler{
		notificationHub: ws.NewNotificationHub(),
		lobbies:         lobbies,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}

	routes := rg.Group("/ws")
	routes.GET("/coinflip/:address", middleware.ValidatePlayerAddress, handler.serveCoinFlip)
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := map[string]bool{}
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
	}
}

// serveCoinFlip streams the player's lobby: the current snapshot first, then one message
// per refresh round.
func (wsh *wsHandler) serveCoinFlip(c *gin.Context) {
	player := utils.GetPlayerAddress(c)
	topic := ws.CoinFlipTopic(player)

	conn, err := wsh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading ws connection")
		return
	}
	defer conn.Close()

	lobby := wsh.lobbies.Lobby(c.Request.Context(), player)
	if err := conn.WriteJSON(lobby); err != nil {
		log.Warn().Err(err).Msg("Error writing ws snapshot")
		return
	}

	wsh.notificationHub.RegisterListener(topic, conn)
	defer wsh.notificationHub.UnregisterListener(topic, conn)

	for {
		var buffer any
		err := conn.ReadJSON(&buffer)
		if err != nil {
			log.Debug().Err(err).Str("topic", topic).Msg("Ws listener closed")
			return
		}
	}
}
