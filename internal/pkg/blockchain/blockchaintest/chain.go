// Package blockchaintest provides an in-memory chain that answers ABI encoded contract
// calls, for tests of code built on the blockchain package.
package blockchaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
)

type Handler func(args []any) ([]any, error)

type Contract struct {
	abi      abi.ABI
	handlers map[string]Handler
	calls    map[string]int
}

// Handle installs fn as the implementation of a view method.
func (c *Contract) Handle(method string, fn Handler) {
	c.handlers[method] = fn
}

// Return makes method always return values.
func (c *Contract) Return(method string, values ...any) {
	c.Handle(method, func([]any) ([]any, error) { return values, nil })
}

// Fail makes method always fail with err.
func (c *Contract) Fail(method string, err error) {
	c.Handle(method, func([]any) ([]any, error) { return nil, err })
}

type Chain struct {
	mu        sync.Mutex
	contracts map[common.Address]*Contract
	logs      []types.Log
	head      uint64
	times     map[uint64]uint64

	// FilterErr, when set, is consulted before every FilterLogs call.
	FilterErr func(query ethereum.FilterQuery) error
	queries   []ethereum.FilterQuery
}

func NewChain() *Chain {
	return &Chain{
		contracts: map[common.Address]*Contract{},
		times:     map[uint64]uint64{},
	}
}

func (c *Chain) Register(address common.Address, contractAbi abi.ABI) *Contract {
	c.mu.Lock()
	defer c.mu.Unlock()

	contract := &Contract{abi: contractAbi, handlers: map[string]Handler{}, calls: map[string]int{}}
	c.contracts[address] = contract
	return contract
}

func (c *Chain) SetHead(block uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = block
}

func (c *Chain) SetBlockTime(block uint64, unixSeconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.times[block] = unixSeconds
}

// AddLog appends a log and moves the head forward if needed.
func (c *Chain) AddLog(l types.Log) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, l)
	if l.BlockNumber > c.head {
		c.head = l.BlockNumber
	}
}

func (c *Chain) Queries() []ethereum.FilterQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ethereum.FilterQuery(nil), c.queries...)
}

func (c *Chain) Calls(address common.Address, method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if contract, ok := c.contracts[address]; ok {
		return contract.calls[method]
	}
	return 0
}

func (c *Chain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if call.To == nil {
		return nil, errors.New("call without target")
	}

	c.mu.Lock()
	contract, ok := c.contracts[*call.To]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no contract at %s", call.To.Hex())
	}
	if len(call.Data) < 4 {
		return nil, errors.New("call data too short")
	}

	method, err := contract.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	contract.calls[method.Name]++
	handler, ok := contract.handlers[method.Name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s not stubbed", method.Name)
	}

	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	values, err := handler(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(values...)
}

func (c *Chain) FilterLogs(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	hook := c.FilterErr
	c.mu.Unlock()

	if hook != nil {
		if err := hook(query); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []types.Log
	for _, l := range c.logs {
		if query.FromBlock != nil && l.BlockNumber < query.FromBlock.Uint64() {
			continue
		}
		if query.ToBlock != nil && l.BlockNumber > query.ToBlock.Uint64() {
			continue
		}
		if !matchesAddress(query.Addresses, l.Address) || !matchesTopics(query.Topics, l.Topics) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (c *Chain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head, nil
}

func (c *Chain) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.head
	if number != nil {
		n = number.Uint64()
	}
	if n > c.head {
		return nil, ethereum.NotFound
	}
	return &types.Header{Number: new(big.Int).SetUint64(n), Time: c.times[n]}, nil
}

func matchesAddress(addresses []common.Address, address common.Address) bool {
	if len(addresses) == 0 {
		return true
	}
	for _, a := range addresses {
		if a == address {
			return true
		}
	}
	return false
}

func matchesTopics(filter [][]common.Hash, topics []common.Hash) bool {
	for i, alternatives := range filter {
		if len(alternatives) == 0 {
			continue
		}
		if i >= len(topics) {
			return false
		}
		found := false
		for _, t := range alternatives {
			if t == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ResolvedLog builds a GameResolved log emitted by contract.
func ResolvedLog(contract common.Address, block uint64, txHash common.Hash, gameId uint64, winner common.Address, tokenId1, tokenId2 uint64) types.Log {
	event := blockchain.CoinFlipAbi.Events[blockchain.GameResolvedEvent]
	data, err := event.Inputs.NonIndexed().Pack(
		new(big.Int).SetUint64(gameId),
		winner,
		new(big.Int).SetUint64(tokenId1),
		new(big.Int).SetUint64(tokenId2),
	)
	if err != nil {
		panic(err)
	}

	return types.Log{
		Address:     contract,
		Topics:      []common.Hash{event.ID},
		Data:        data,
		BlockNumber: block,
		TxHash:      txHash,
	}
}

// Uints converts ids to the []*big.Int shape uint256[] outputs are packed from.
func Uints(values ...uint64) []*big.Int {
	out := make([]*big.Int, 0, len(values))
	for _, v := range values {
		out = append(out, new(big.Int).SetUint64(v))
	}
	return out
}

// GameTuple is the getGame output shape.
type GameTuple struct {
	Player1         common.Address
	TokenId1        *big.Int
	Player2         common.Address
	TokenId2        *big.Int
	Active          bool
	RequestId       *big.Int
	Data            []byte
	JoinTimestamp   *big.Int
	CreateTimestamp *big.Int
}

func NewGameTuple(player1 common.Address, tokenId1 uint64, player2 common.Address, tokenId2 uint64) GameTuple {
	return GameTuple{
		Player1:         player1,
		TokenId1:        new(big.Int).SetUint64(tokenId1),
		Player2:         player2,
		TokenId2:        new(big.Int).SetUint64(tokenId2),
		Active:          player2 == (common.Address{}),
		RequestId:       big.NewInt(0),
		Data:            []byte{},
		JoinTimestamp:   big.NewInt(0),
		CreateTimestamp: big.NewInt(1700000000),
	}
}

// Recorder is a blockchain.Signer that records calls instead of sending them.
type Recorder struct {
	mu    sync.Mutex
	Sent  []blockchain.ContractCall
	From  []common.Address
	Err   error
	count int
}

func (r *Recorder) Send(_ context.Context, from common.Address, call blockchain.ContractCall) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.count++
	r.Sent = append(r.Sent, call)
	r.From = append(r.From, from)
	return r.Ref(r.count - 1), nil
}

// Ref returns the reference Send handed out for the i-th recorded call.
func (r *Recorder) Ref(i int) string {
	return fmt.Sprintf("0x%064x", i+1)
}

func (r *Recorder) Methods() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, call := range r.Sent {
		out = append(out, call.Method)
	}
	return out
}
