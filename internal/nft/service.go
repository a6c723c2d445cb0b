package nft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"github.com/mymilios/mymilios-backend/internal/pkg/reject"
	"github.com/rs/zerolog/log"
)

const (
	OperatorCoinFlip = "coinflip"
	OperatorDaycare  = "daycare"

	approvalRequired = "error.nft.approval-required"
	tokenNotOwned    = "error.nft.token-not-owned"
	unknownOperator  = "error.nft.unknown-operator"
	signerMismatch   = "error.signer.mismatch"
)

type nftCollection interface {
	TokensOfOwner(ctx context.Context, owner common.Address) ([]uint64, error)
	IsApprovedForAll(ctx context.Context, owner common.Address, operator common.Address) (bool, error)
	SetApprovalForAll(operator common.Address, approved bool) blockchain.ContractCall
}

type Service struct {
	collection nftCollection
	signer     blockchain.Signer
	operators  map[string]common.Address
	images     *ImageResolver
}

// NewService builds the NFT service. operators maps operator names (OperatorCoinFlip,
// OperatorDaycare) to contract addresses; a missing name is reported as unknown.
func NewService(collection nftCollection, signer blockchain.Signer, operators map[string]common.Address, images *ImageResolver) *Service {
	return &Service{
		collection: collection,
		signer:     signer,
		operators:  operators,
		images:     images,
	}
}

func (s *Service) Tokens(ctx context.Context, owner common.Address) ([]model.Token, *reject.ProblemWithTrace) {
	ids, err := s.collection.TokensOfOwner(ctx, owner)
	if err != nil {
		return nil, reject.ChainProblem(err)
	}

	tokens := make([]model.Token, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, model.Token{Id: id, ImageUrl: s.ImageUrl(ctx, id)})
	}
	return tokens, nil
}

func (s *Service) Approval(ctx context.Context, owner common.Address, operatorName string) (model.Approval, *reject.ProblemWithTrace) {
	operator, problem := s.operator(operatorName)
	if problem != nil {
		return model.Approval{}, problem
	}

	approved, err := s.collection.IsApprovedForAll(ctx, owner, operator)
	if err != nil {
		return model.Approval{}, reject.ChainProblem(err)
	}

	return model.Approval{
		Owner:           owner,
		Operator:        operatorName,
		OperatorAddress: operator,
		Approved:        approved,
	}, nil
}

func (s *Service) SetApproval(ctx context.Context, owner common.Address, operatorName string) (model.Approval, *reject.ProblemWithTrace) {
	operator, problem := s.operator(operatorName)
	if problem != nil {
		return model.Approval{}, problem
	}

	ref, err := s.signer.Send(ctx, owner, s.collection.SetApprovalForAll(operator, true))
	if err != nil {
		if errors.Is(err, blockchain.ErrSignerMismatch) {
			return model.Approval{}, reject.Forbidden("Signer cannot act for this player", signerMismatch, err)
		}
		return model.Approval{}, reject.ChainProblem(err)
	}

	log.Info().Str("owner", owner.Hex()).Str("operator", operatorName).Str("ref", ref).Msg("Approval submitted")
	return model.Approval{
		Owner:           owner,
		Operator:        operatorName,
		OperatorAddress: operator,
		Approved:        true,
		Reference:       ref,
	}, nil
}

// RequireApproval checks that operator may move owner's NFTs and that owner holds every
// token in tokenIds.
func (s *Service) RequireApproval(ctx context.Context, owner common.Address, operator common.Address, tokenIds ...uint64) *reject.ProblemWithTrace {
	approved, err := s.collection.IsApprovedForAll(ctx, owner, operator)
	if err != nil {
		return reject.ChainProblem(err)
	}
	if !approved {
		return reject.Precondition("Contract is not approved to transfer your NFTs", approvalRequired, nil)
	}

	if len(tokenIds) == 0 {
		return nil
	}

	owned, err := s.collection.TokensOfOwner(ctx, owner)
	if err != nil {
		return reject.ChainProblem(err)
	}
	held := make(map[uint64]bool, len(owned))
	for _, id := range owned {
		held[id] = true
	}

	for _, id := range tokenIds {
		if !held[id] {
			problem := reject.Precondition("Token is not owned by player", tokenNotOwned, fmt.Errorf("token %d not owned by %s", id, owner.Hex()))
			problem.Problem.Params = map[string]string{"tokenId": fmt.Sprint(id)}
			return problem
		}
	}
	return nil
}

func (s *Service) ImageUrl(ctx context.Context, tokenId uint64) string {
	return s.images.ImageUrl(ctx, tokenId)
}

func (s *Service) operator(name string) (common.Address, *reject.ProblemWithTrace) {
	address, ok := s.operators[strings.ToLower(name)]
	if !ok || address == (common.Address{}) {
		return common.Address{}, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Unknown operator").
				WithStatus(http.StatusBadRequest).
				WithCode(unknownOperator).
				WithParam("operator", name).
				Build(),
			Cause: fmt.Errorf("unknown operator %q", name),
		}
	}
	return address, nil
}
