package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/pubsub"
	"github.com/rs/zerolog/log"
)

var ErrSignerMismatch = errors.New("signer cannot send for this address")

// ContractCall is a prepared state-changing call.
type ContractCall struct {
	CommandType string
	Contract    common.Address
	Abi         *abi.ABI
	Method      string
	Args        []any
}

// Signer submits a contract call on behalf of a player and returns a reference to it:
// a transaction hash or a command id.
type Signer interface {
	Send(ctx context.Context, from common.Address, call ContractCall) (string, error)
}

type KeyedSigner struct {
	backend bind.ContractBackend
	key     *ecdsa.PrivateKey
	address common.Address
	chainId *big.Int
}

func NewKeyedSigner(backend bind.ContractBackend, hexKey string, chainId int64) (*KeyedSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing signer key: %w", err)
	}

	return &KeyedSigner{
		backend: backend,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainId: big.NewInt(chainId),
	}, nil
}

func (s *KeyedSigner) Address() common.Address {
	return s.address
}

func (s *KeyedSigner) Send(ctx context.Context, from common.Address, call ContractCall) (string, error) {
	if !model.SameAddress(from, s.address) {
		return "", fmt.Errorf("%w: %s", ErrSignerMismatch, from.Hex())
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainId)
	if err != nil {
		return "", err
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(call.Contract, *call.Abi, s.backend, s.backend, s.backend)
	tx, err := contract.Transact(opts, call.Method, call.Args...)
	if err != nil {
		return "", fmt.Errorf("sending %s: %w", call.Method, err)
	}

	log.Info().
		Str("method", call.Method).
		Str("from", from.Hex()).
		Str("tx", tx.Hash().Hex()).
		Msg("Transaction submitted")

	return tx.Hash().Hex(), nil
}

type CommandPublisher interface {
	Publish(ctx context.Context, message pubsub.Publishable) error
}

type CommandSigner struct {
	publisher CommandPublisher
}

func NewCommandSigner(publisher CommandPublisher) *CommandSigner {
	return &CommandSigner{publisher: publisher}
}

func (s *CommandSigner) Send(ctx context.Context, from common.Address, call ContractCall) (string, error) {
	cmd, err := NewBlockchainCommand(call, from)
	if err != nil {
		return "", err
	}

	if err := s.publisher.Publish(ctx, cmd); err != nil {
		return "", fmt.Errorf("publishing %s command: %w", cmd.Type, err)
	}

	log.Info().
		Str("commandId", cmd.Id).
		Str("type", cmd.Type).
		Str("from", from.Hex()).
		Msg("Blockchain command published")

	return cmd.Id, nil
}
