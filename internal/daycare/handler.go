package daycare

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/pkg/middleware"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
)

type daycareHandler struct {
	daycareService *Service
}

type TokensRequest struct {
	TokenIds []uint64 `json:"tokenIds" binding:"required"`
}

func RegisterRoutes(rg *gin.RouterGroup, service *Service) {
	handler := daycareHandler{
		daycareService: service,
	}

	routes := rg.Group("/daycare/:address", middleware.ValidatePlayerAddress)
	routes.GET("", handler.getStatus)
	routes.POST("/drop-off", handler.dropOff)
	routes.POST("/pick-up", handler.pickUp)
	routes.POST("/claim", handler.claim)

	rg.GET("/leaderboard", handler.getLeaderboard)
}

func (h *daycareHandler) getStatus(c *gin.Context) {
	status, err := h.daycareService.Status(c.Request.Context(), utils.GetPlayerAddress(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *daycareHandler) dropOff(c *gin.Context) {
	body := TokensRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	submission, err := h.daycareService.DropOff(c.Request.Context(), utils.GetPlayerAddress(c), body.TokenIds)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, submission)
}

func (h *daycareHandler) pickUp(c *gin.Context) {
	body := TokensRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	submission, err := h.daycareService.PickUp(c.Request.Context(), utils.GetPlayerAddress(c), body.TokenIds)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, submission)
}

func (h *daycareHandler) claim(c *gin.Context) {
	body := TokensRequest{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	submission, err := h.daycareService.Claim(c.Request.Context(), utils.GetPlayerAddress(c), body.TokenIds)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, submission)
}

func (h *daycareHandler) getLeaderboard(c *gin.Context) {
	page, err := utils.NewPageRequest(c)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	leaderboard, err := h.daycareService.Leaderboard(c.Request.Context(), page)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}
