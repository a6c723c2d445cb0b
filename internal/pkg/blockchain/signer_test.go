package blockchain_test

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/mymilios/mymilios-backend/internal/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []pubsub.Publishable
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, message pubsub.Publishable) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func TestNewBlockchainCommand(t *testing.T) {
	coinFlip := blockchain.NewCoinFlip(coinFlipAddress, blockchaintest.NewChain())

	cmd, err := blockchain.NewBlockchainCommand(coinFlip.JoinGame(3, 8), alice)
	require.NoError(t, err)

	assert.NotEmpty(t, cmd.Id)
	assert.Equal(t, "COINFLIP_JOIN_GAME", cmd.Type)
	assert.Equal(t, alice.Hex(), cmd.Sender)
	assert.Equal(t, coinFlipAddress.Hex(), cmd.Contract)
	assert.Equal(t, []string{"3", "8"}, cmd.Payload)
	assert.Equal(t, blockchain.CommandTopic, cmd.GetEventTopicName())

	selector := hex.EncodeToString(blockchain.CoinFlipAbi.Methods["joinGame"].ID)
	assert.True(t, strings.HasPrefix(cmd.Calldata, "0x"+selector))
}

func TestNewBlockchainCommandFormatsSlicesAndAddresses(t *testing.T) {
	daycare := blockchain.NewDaycare(daycareAddress, blockchaintest.NewChain())
	cmd, err := blockchain.NewBlockchainCommand(daycare.DropOffMultiple([]uint64{4, 9}), alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"[4,9]"}, cmd.Payload)

	nft := blockchain.NewNftCollection(nftAddress, blockchaintest.NewChain())
	cmd, err = blockchain.NewBlockchainCommand(nft.SetApprovalForAll(coinFlipAddress, true), alice)
	require.NoError(t, err)
	assert.Equal(t, []string{coinFlipAddress.Hex(), "true"}, cmd.Payload)
}

func TestCommandSignerPublishes(t *testing.T) {
	publisher := &fakePublisher{}
	signer := blockchain.NewCommandSigner(publisher)
	coinFlip := blockchain.NewCoinFlip(coinFlipAddress, blockchaintest.NewChain())

	ref, err := signer.Send(context.Background(), alice, coinFlip.CreateGame(7))
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)

	cmd := publisher.published[0].(blockchain.Command)
	assert.Equal(t, ref, cmd.Id)
	assert.Equal(t, "createGame", cmd.Method)
}

func TestCommandSignerPublishError(t *testing.T) {
	signer := blockchain.NewCommandSigner(&fakePublisher{err: errors.New("topic gone")})
	coinFlip := blockchain.NewCoinFlip(coinFlipAddress, blockchaintest.NewChain())

	_, err := signer.Send(context.Background(), alice, coinFlip.CreateGame(7))
	assert.ErrorContains(t, err, "topic gone")
}

func TestKeyedSignerRejectsOtherSender(t *testing.T) {
	signer, err := blockchain.NewKeyedSigner(nil, "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291", 2741)
	require.NoError(t, err)
	assert.NotEqual(t, alice, signer.Address())

	coinFlip := blockchain.NewCoinFlip(coinFlipAddress, blockchaintest.NewChain())
	_, err = signer.Send(context.Background(), alice, coinFlip.CreateGame(7))
	assert.ErrorIs(t, err, blockchain.ErrSignerMismatch)
}

func TestKeyedSignerRejectsBadKey(t *testing.T) {
	_, err := blockchain.NewKeyedSigner(nil, "not-hex", 2741)
	assert.Error(t, err)
}
