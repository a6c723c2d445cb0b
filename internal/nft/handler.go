package nft

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/pkg/middleware"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
)

type nftHandler struct {
	nftService *Service
}

func RegisterRoutes(rg *gin.RouterGroup, service *Service) {
	handler := nftHandler{
		nftService: service,
	}

	routes := rg.Group("/nft/:address", middleware.ValidatePlayerAddress)
	routes.GET("/tokens", handler.getTokens)
	routes.GET("/approvals/:operator", handler.getApproval)
	routes.POST("/approvals/:operator", handler.approve)

	rg.GET("/images/:id", handler.getImage)
}

func (h *nftHandler) getTokens(c *gin.Context) {
	tokens, err := h.nftService.Tokens(c.Request.Context(), utils.GetPlayerAddress(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *nftHandler) getApproval(c *gin.Context) {
	approval, err := h.nftService.Approval(c.Request.Context(), utils.GetPlayerAddress(c), c.Param("operator"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, approval)
}

func (h *nftHandler) approve(c *gin.Context) {
	approval, err := h.nftService.SetApproval(c.Request.Context(), utils.GetPlayerAddress(c), c.Param("operator"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusAccepted, approval)
}

func (h *nftHandler) getImage(c *gin.Context) {
	tokenId, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.RequestParamsProblem())
		return
	}

	c.JSON(http.StatusOK, model.Token{Id: tokenId, ImageUrl: h.nftService.ImageUrl(c.Request.Context(), tokenId)})
}
