package coinflip

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

type coinFlipContractBridge struct {
	coinFlip coinFlipContract
	signer   blockchain.Signer
	onFailed func(ctx context.Context, failed blockchain.CommandFailed)
}

func (b *coinFlipContractBridge) sendCreateGameTx(ctx context.Context, player common.Address, tokenId uint64) (string, error) {
	return b.signer.Send(ctx, player, b.coinFlip.CreateGame(tokenId))
}

func (b *coinFlipContractBridge) sendJoinGameTx(ctx context.Context, player common.Address, gameId uint64, tokenId uint64) (string, error) {
	return b.signer.Send(ctx, player, b.coinFlip.JoinGame(gameId, tokenId))
}

func (b *coinFlipContractBridge) handleTxFailed(ctx context.Context, message *gcppubsub.Message) {
	defer message.Ack()

	log.Info().Msg("Received message payload " + string(message.Data))
	messagePayload, err := utils.DecodeMessage[blockchain.CommandFailed](message.Data)
	if err != nil {
		log.Warn().Err(err).Msg("Error while parsing CommandFailed message")
		return
	}

	switch messagePayload.Type {
	case blockchain.CommandCreateGame, blockchain.CommandJoinGame:
		b.onFailed(ctx, *messagePayload)
	default:
		log.Debug().Str("type", messagePayload.Type).Msg("Ignoring failed command of another feature")
	}
}
