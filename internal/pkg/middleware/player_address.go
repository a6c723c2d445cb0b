package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

const playerAddressInvalid string = "error.player.address-invalid"

// ValidatePlayerAddress reads the :address path param and stores its checksummed form.
func ValidatePlayerAddress(context *gin.Context) {
	raw := context.Param("address")
	if !common.IsHexAddress(raw) {
		log.Warn().Str("address", raw).Msg("Invalid player address: 400")
		context.AbortWithStatusJSON(
			http.StatusBadRequest,
			reject.NewProblem().
				WithTitle("Invalid player address").
				WithStatus(http.StatusBadRequest).
				WithCode(playerAddressInvalid).
				WithParam("address", raw).
				Build())
		return
	}

	utils.SetPlayerAddressCtx(common.HexToAddress(raw), context)
	context.Next()
}
