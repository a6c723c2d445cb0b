package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Daycare struct {
	boundContract
}

func NewDaycare(address common.Address, backend Backend) *Daycare {
	return &Daycare{boundContract{address: address, abi: DaycareAbi, backend: backend}}
}

func (d *Daycare) Address() common.Address {
	return d.address
}

func (d *Daycare) Daycares(ctx context.Context, owner common.Address) ([]uint64, error) {
	values, err := d.call(ctx, "getDaycares", owner)
	if err != nil {
		return nil, err
	}
	return toUint64s(values[0].([]*big.Int))
}

func (d *Daycare) PendingPoints(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := d.call(ctx, "getPendingPoints", owner)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func (d *Daycare) TotalPoints(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := d.call(ctx, "getTotalPoints", owner)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

func (d *Daycare) Leaderboard(ctx context.Context) ([]common.Address, []*big.Int, error) {
	values, err := d.call(ctx, "getLeaderboard")
	if err != nil {
		return nil, nil, err
	}

	players := values[0].([]common.Address)
	points := values[1].([]*big.Int)
	if len(players) != len(points) {
		return nil, nil, fmt.Errorf("leaderboard has %d players but %d point entries", len(players), len(points))
	}
	return players, points, nil
}

func (d *Daycare) DropOffMultiple(tokenIds []uint64) ContractCall {
	return d.prepare(CommandDropOff, "dropOffMultiple", toBigInts(tokenIds))
}

func (d *Daycare) PickUpMultiple(tokenIds []uint64) ContractCall {
	return d.prepare(CommandPickUp, "pickUpMultiple", toBigInts(tokenIds))
}

func (d *Daycare) PickUp(tokenId uint64) ContractCall {
	return d.prepare(CommandPickUp, "pickUp", new(big.Int).SetUint64(tokenId))
}

func (d *Daycare) ClaimPoints(tokenId uint64) ContractCall {
	return d.prepare(CommandClaim, "claimPoints", new(big.Int).SetUint64(tokenId))
}

func (d *Daycare) ClaimMultiple(tokenIds []uint64) ContractCall {
	return d.prepare(CommandClaim, "claimMultiple", toBigInts(tokenIds))
}
