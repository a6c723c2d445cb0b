package daycare

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/mymilios/mymilios-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	tokensRequired = "error.daycare.tokens-required"
	notInDaycare   = "error.daycare.token-not-in-daycare"
	signerMismatch = "error.signer.mismatch"
)

type daycareContract interface {
	Address() common.Address
	Daycares(ctx context.Context, owner common.Address) ([]uint64, error)
	PendingPoints(ctx context.Context, owner common.Address) (*big.Int, error)
	TotalPoints(ctx context.Context, owner common.Address) (*big.Int, error)
	Leaderboard(ctx context.Context) ([]common.Address, []*big.Int, error)
	DropOffMultiple(tokenIds []uint64) blockchain.ContractCall
	PickUpMultiple(tokenIds []uint64) blockchain.ContractCall
	PickUp(tokenId uint64) blockchain.ContractCall
	ClaimPoints(tokenId uint64) blockchain.ContractCall
	ClaimMultiple(tokenIds []uint64) blockchain.ContractCall
}

type approvalGuard interface {
	RequireApproval(ctx context.Context, owner common.Address, operator common.Address, tokenIds ...uint64) *reject.ProblemWithTrace
}

type Service struct {
	daycare daycareContract
	tokens  approvalGuard
	signer  blockchain.Signer
}

func NewService(daycare daycareContract, tokens approvalGuard, signer blockchain.Signer) *Service {
	return &Service{daycare: daycare, tokens: tokens, signer: signer}
}

func (s *Service) Status(ctx context.Context, owner common.Address) (model.Daycare, *reject.ProblemWithTrace) {
	tokenIds, err := s.daycare.Daycares(ctx, owner)
	if err != nil {
		return model.Daycare{}, reject.ChainProblem(err)
	}
	pending, err := s.daycare.PendingPoints(ctx, owner)
	if err != nil {
		return model.Daycare{}, reject.ChainProblem(err)
	}
	total, err := s.daycare.TotalPoints(ctx, owner)
	if err != nil {
		return model.Daycare{}, reject.ChainProblem(err)
	}

	return model.Daycare{
		Owner:         owner,
		TokenIds:      tokenIds,
		PendingPoints: pending.String(),
		TotalPoints:   total.String(),
	}, nil
}

func (s *Service) DropOff(ctx context.Context, owner common.Address, tokenIds []uint64) (model.Submission, *reject.ProblemWithTrace) {
	if len(tokenIds) == 0 {
		return model.Submission{}, tokensRequiredProblem()
	}
	if problem := s.tokens.RequireApproval(ctx, owner, s.daycare.Address(), tokenIds...); problem != nil {
		return model.Submission{}, problem
	}

	return s.send(ctx, owner, tokenIds, s.daycare.DropOffMultiple(tokenIds))
}

// PickUp returns tokens from the daycare; a single token uses pickUp.
func (s *Service) PickUp(ctx context.Context, owner common.Address, tokenIds []uint64) (model.Submission, *reject.ProblemWithTrace) {
	if problem := s.requireInDaycare(ctx, owner, tokenIds); problem != nil {
		return model.Submission{}, problem
	}

	call := s.daycare.PickUpMultiple(tokenIds)
	if len(tokenIds) == 1 {
		call = s.daycare.PickUp(tokenIds[0])
	}
	return s.send(ctx, owner, tokenIds, call)
}

// Claim collects points for tokens in the daycare; a single token uses claimPoints.
func (s *Service) Claim(ctx context.Context, owner common.Address, tokenIds []uint64) (model.Submission, *reject.ProblemWithTrace) {
	if problem := s.requireInDaycare(ctx, owner, tokenIds); problem != nil {
		return model.Submission{}, problem
	}

	call := s.daycare.ClaimMultiple(tokenIds)
	if len(tokenIds) == 1 {
		call = s.daycare.ClaimPoints(tokenIds[0])
	}
	return s.send(ctx, owner, tokenIds, call)
}

// Leaderboard ranks players by points, highest first.
func (s *Service) Leaderboard(ctx context.Context, page utils.PageRequest) (*utils.PageResponse[model.LeaderboardEntry], *reject.ProblemWithTrace) {
	players, points, err := s.daycare.Leaderboard(ctx)
	if err != nil {
		return nil, reject.ChainProblem(err)
	}

	order := make([]int, len(players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if c := points[order[a]].Cmp(points[order[b]]); c != 0 {
			return c > 0
		}
		return strings.ToLower(players[order[a]].Hex()) < strings.ToLower(players[order[b]].Hex())
	})

	entries := make([]model.LeaderboardEntry, 0, len(order))
	for rank, i := range order {
		entries = append(entries, model.LeaderboardEntry{
			Rank:   rank + 1,
			Player: players[i],
			Points: points[i].String(),
		})
	}

	return utils.Paginate(entries, page), nil
}

func (s *Service) requireInDaycare(ctx context.Context, owner common.Address, tokenIds []uint64) *reject.ProblemWithTrace {
	if len(tokenIds) == 0 {
		return tokensRequiredProblem()
	}

	staked, err := s.daycare.Daycares(ctx, owner)
	if err != nil {
		return reject.ChainProblem(err)
	}
	inDaycare := make(map[uint64]bool, len(staked))
	for _, id := range staked {
		inDaycare[id] = true
	}

	for _, id := range tokenIds {
		if !inDaycare[id] {
			problem := reject.Precondition("Token is not in the daycare", notInDaycare, fmt.Errorf("token %d not in daycare of %s", id, owner.Hex()))
			problem.Problem.Params = map[string]string{"tokenId": fmt.Sprint(id)}
			return problem
		}
	}
	return nil
}

func (s *Service) send(ctx context.Context, owner common.Address, tokenIds []uint64, call blockchain.ContractCall) (model.Submission, *reject.ProblemWithTrace) {
	ref, err := s.signer.Send(ctx, owner, call)
	if err != nil {
		if errors.Is(err, blockchain.ErrSignerMismatch) {
			return model.Submission{}, reject.Forbidden("Signer cannot act for this player", signerMismatch, err)
		}
		return model.Submission{}, reject.ChainProblem(err)
	}

	log.Info().Str("owner", owner.Hex()).Str("method", call.Method).Str("ref", ref).Msg("Daycare transaction submitted")
	return model.Submission{Method: call.Method, TokenIds: tokenIds, Reference: ref}, nil
}

func tokensRequiredProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("At least one token id is required").
			WithStatus(http.StatusBadRequest).
			WithCode(tokensRequired).
			Build(),
		Cause: errors.New("empty token id list"),
	}
}
