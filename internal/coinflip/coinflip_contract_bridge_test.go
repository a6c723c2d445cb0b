package coinflip

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const txFailedTopic = "blockchain.evm.events.tx-failed"

func commandFailedPayload(t *testing.T, ref string, commandType string, reason string) []byte {
	data, err := json.Marshal(blockchain.CommandFailed{CommandId: ref, Type: commandType, Reason: reason})
	require.NoError(t, err)
	return data
}

func TestHandleTxFailedResetsPendingCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, problem := f.service.CreateGame(ctx, alice, 77)
	require.Nil(t, problem)
	ref := f.signer.Ref(0)

	f.service.bridge.handleTxFailed(ctx, &gcppubsub.Message{
		Data: commandFailedPayload(t, ref, blockchain.CommandCreateGame, "out of gas"),
	})

	sess := f.service.session(alice)
	assert.Zero(t, sess.pendingCreates)
	lobby := f.service.Lobby(ctx, alice)
	assert.Equal(t, statusFailed, lobby.CreateGameStatus)
	assert.Equal(t, "out of gas", lobby.CreateGameError)

	// A game alice opens afterwards is not taken for the failed creation.
	f.openGame(8, alice, 77)
	f.service.Refresh(ctx, alice)
	assert.Empty(t, f.service.session(alice).created)
}

func TestHandleTxFailedResetsJoin(t *testing.T) {
	f := newFixture()
	f.openGame(4, bob, 44)
	ctx := context.Background()

	_, problem := f.service.JoinGame(ctx, alice, 4, 12)
	require.Nil(t, problem)

	f.service.bridge.handleTxFailed(ctx, &gcppubsub.Message{
		Data: commandFailedPayload(t, f.signer.Ref(0), blockchain.CommandJoinGame, "reverted"),
	})

	lobby := f.service.Lobby(ctx, alice)
	assert.Nil(t, lobby.JoiningGameId)
	assert.Equal(t, "reverted", lobby.JoinGameError)
	assert.True(t, lobby.Games[0].CanJoin)
}

func TestHandleTxFailedIgnoresOtherCommands(t *testing.T) {
	f := newFixture()
	f.openGame(4, bob, 44)
	ctx := context.Background()

	_, problem := f.service.JoinGame(ctx, alice, 4, 12)
	require.Nil(t, problem)
	ref := f.signer.Ref(0)

	f.service.bridge.handleTxFailed(ctx, &gcppubsub.Message{
		Data: commandFailedPayload(t, ref, blockchain.CommandDropOff, "reverted"),
	})
	f.service.bridge.handleTxFailed(ctx, &gcppubsub.Message{Data: []byte("{not json")})

	lobby := f.service.Lobby(ctx, alice)
	require.NotNil(t, lobby.JoiningGameId)
	assert.Equal(t, uint64(4), *lobby.JoiningGameId)
	assert.Equal(t, statusSubmitted, lobby.JoinGameStatus)
}

func TestTxFailedMessagesAreAcked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	admin, err := gcppubsub.NewClient(ctx, "mymilios", option.WithGRPCConn(conn))
	require.NoError(t, err)
	topic, err := admin.CreateTopic(ctx, txFailedTopic)
	require.NoError(t, err)
	_, err = admin.CreateSubscription(ctx, blockchain.CommandFailedSubscribe, gcppubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	client, err := pubsub.NewClient(ctx, "mymilios", option.WithGRPCConn(conn))
	require.NoError(t, err)

	f := newFixture()
	f.openGame(4, bob, 44)
	_, problem := f.service.JoinGame(ctx, alice, 4, 12)
	require.Nil(t, problem)

	go client.Subscribe(ctx, pubsub.SubscriptionHandler{
		SubscriptionId: blockchain.CommandFailedSubscribe,
		Handler:        f.service.bridge.handleTxFailed,
	})

	topicName := "projects/mymilios/topics/" + txFailedTopic
	ids := []string{
		srv.Publish(topicName, commandFailedPayload(t, f.signer.Ref(0), blockchain.CommandJoinGame, "reverted"), nil),
		srv.Publish(topicName, []byte("{not json"), nil),
		srv.Publish(topicName, commandFailedPayload(t, "0xabc", blockchain.CommandClaim, "reverted"), nil),
	}

	assert.Eventually(t, func() bool {
		for _, id := range ids {
			if m := srv.Message(id); m == nil || m.Acks == 0 {
				return false
			}
		}
		return true
	}, 10*time.Second, 50*time.Millisecond)

	assert.Nil(t, f.service.Lobby(ctx, alice).JoiningGameId)
}
