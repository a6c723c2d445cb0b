package coinflip

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/middleware"
	"github.com/mymilios/mymilios-backend/internal/pkg/pubsub"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
)

type Subscriber interface {
	Subscribe(ctx context.Context, handler pubsub.SubscriptionHandler)
}

type coinFlipHandler struct {
	coinFlipService *Service
}

type CreateGameRequest struct {
	TokenId *uint64 `json:"tokenId" binding:"required"`
}

type JoinGameRequest struct {
	TokenId *uint64 `json:"tokenId" binding:"required"`
}

// RegisterRoutesAndSubscriptions mounts the coin-flip routes. Transaction failures are
// consumed only when subscriber is set.
func RegisterRoutesAndSubscriptions(ctx context.Context, rg *gin.RouterGroup, service *Service, subscriber Subscriber) {
	handler := coinFlipHandler{
		coinFlipService: service,
	}

	routes := rg.Group("/coinflip/:address", middleware.ValidatePlayerAddress)
	routes.GET("", handler.getLobby)
	routes.POST("/refresh", handler.refresh)
	routes.POST("/games", handler.createGame)
	routes.POST("/games/:id/join", handler.joinGame)
	routes.GET("/notifications", handler.getNotifications)
	routes.POST("/notifications/refresh", handler.refreshNotifications)
	routes.PUT("/notifications/:txHash/resolved", handler.markResolved)

	if subscriber != nil {
		go subscriber.Subscribe(ctx, pubsub.SubscriptionHandler{
			SubscriptionId: blockchain.CommandFailedSubscribe,
			Handler:        service.bridge.handleTxFailed,
		})
	}
}

func (h *coinFlipHandler) getLobby(c *gin.Context) {
	lobby := h.coinFlipService.Lobby(c.Request.Context(), utils.GetPlayerAddress(c))
	c.JSON(http.StatusOK, lobby)
}

func (h *coinFlipHandler) refresh(c *gin.Context) {
	lobby := h.coinFlipService.Refresh(c.Request.Context(), utils.GetPlayerAddress(c))
	c.JSON(http.StatusOK, lobby)
}

func (h *coinFlipHandler) createGame(c *gin.Context) {
	body := CreateGameRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	lobby, err := h.coinFlipService.CreateGame(c.Request.Context(), utils.GetPlayerAddress(c), *body.TokenId)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, lobby)
}

func (h *coinFlipHandler) joinGame(c *gin.Context) {
	gameId, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	body := JoinGameRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	lobby, err := h.coinFlipService.JoinGame(c.Request.Context(), utils.GetPlayerAddress(c), gameId, *body.TokenId)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, lobby)
}

func (h *coinFlipHandler) getNotifications(c *gin.Context) {
	page, err := utils.NewPageRequest(c)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, h.coinFlipService.Notifications(c.Request.Context(), utils.GetPlayerAddress(c), page))
}

func (h *coinFlipHandler) refreshNotifications(c *gin.Context) {
	page, err := utils.NewPageRequest(c)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, h.coinFlipService.RefreshNotifications(c.Request.Context(), utils.GetPlayerAddress(c), page))
}

func (h *coinFlipHandler) markResolved(c *gin.Context) {
	raw := c.Param("txHash")
	if len(common.FromHex(raw)) != common.HashLength {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	if err := h.coinFlipService.MarkResolved(c.Request.Context(), utils.GetPlayerAddress(c), common.HexToHash(raw)); err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.Status(http.StatusNoContent)
}
