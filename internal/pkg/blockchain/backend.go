package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
)

// Backend is the read side of the chain used by the contract wrappers.
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

var ErrValueOutOfRange = errors.New("value does not fit in uint64")

// Dial connects to the RPC endpoint, retrying with backoff until the chain id can be read.
func Dial(ctx context.Context, rpcUrl string, chainId int64, attempts int) (*ethclient.Client, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		client, err := dialOnce(ctx, rpcUrl, chainId)
		if err == nil {
			return client, nil
		}

		if int(b.Attempt())+1 >= attempts {
			return nil, err
		}

		wait := b.Duration()
		log.Warn().Err(err).Dur("retryIn", wait).Msg("RPC endpoint not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func dialOnce(ctx context.Context, rpcUrl string, chainId int64) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, err
	}

	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	if remote.Int64() != chainId {
		client.Close()
		return nil, fmt.Errorf("rpc %s serves chain %s, expected %d", rpcUrl, remote, chainId)
	}

	return client, nil
}

type boundContract struct {
	address common.Address
	abi     abi.ABI
	backend Backend
}

func (c *boundContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	to := c.address
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return values, nil
}

func (c *boundContract) prepare(commandType string, method string, args ...any) ContractCall {
	return ContractCall{
		CommandType: commandType,
		Contract:    c.address,
		Abi:         &c.abi,
		Method:      method,
		Args:        args,
	}
}

func toUint64(v *big.Int) (uint64, error) {
	if v == nil || !v.IsUint64() {
		return 0, ErrValueOutOfRange
	}
	return v.Uint64(), nil
}

func toUint64s(values []*big.Int) ([]uint64, error) {
	out := make([]uint64, 0, len(values))
	for _, v := range values {
		u, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func toBigInts(values []uint64) []*big.Int {
	out := make([]*big.Int, 0, len(values))
	for _, v := range values {
		out = append(out, new(big.Int).SetUint64(v))
	}
	return out
}
