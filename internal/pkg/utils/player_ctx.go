package utils

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const playerAddressCtxKey string = "playerAddress"

func GetPlayerAddress(ctx *gin.Context) common.Address {
	value := getCtxValue(playerAddressCtxKey, ctx)
	if value == nil {
		return common.Address{}
	}
	return value.(common.Address)
}

func SetPlayerAddressCtx(address common.Address, ctx *gin.Context) {
	ctx.Set(playerAddressCtxKey, address)
}

func getCtxValue(key string, ctx *gin.Context) any {
	value, exists := ctx.Get(key)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}
	return value
}
