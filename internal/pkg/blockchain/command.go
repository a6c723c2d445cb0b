package blockchain

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	CommandTopic           = "blockchain.evm.commands"
	CommandFailedSubscribe = "blockchain.evm.events.tx-failed-sub"
)

const (
	CommandSetApproval = "NFT_SET_APPROVAL_FOR_ALL"
	CommandCreateGame  = "COINFLIP_CREATE_GAME"
	CommandJoinGame    = "COINFLIP_JOIN_GAME"
	CommandDropOff     = "DAYCARE_DROP_OFF"
	CommandPickUp      = "DAYCARE_PICK_UP"
	CommandClaim       = "DAYCARE_CLAIM"
)

// Command asks the external custodial signer to send a transaction for Sender.
type Command struct {
	Id       string   `json:"id"`
	Type     string   `json:"type"`
	Sender   string   `json:"sender"`
	Contract string   `json:"contract"`
	Method   string   `json:"method"`
	Payload  []string `json:"payload"`
	Calldata string   `json:"calldata"`
}

func (bc Command) GetEventTopicName() string {
	return CommandTopic
}

// CommandFailed is published by the signer when a command's transaction could not be sent
// or reverted.
type CommandFailed struct {
	CommandId string   `json:"commandId"`
	Type      string   `json:"type"`
	Sender    string   `json:"sender"`
	Payload   []string `json:"payload"`
	Reason    string   `json:"reason"`
}

func NewBlockchainCommand(call ContractCall, sender common.Address) (Command, error) {
	input, err := call.Abi.Pack(call.Method, call.Args...)
	if err != nil {
		return Command{}, fmt.Errorf("packing %s: %w", call.Method, err)
	}

	payload := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		payload = append(payload, formatArg(arg))
	}

	return Command{
		Id:       uuid.New().String(),
		Type:     call.CommandType,
		Sender:   sender.Hex(),
		Contract: call.Contract.Hex(),
		Method:   call.Method,
		Payload:  payload,
		Calldata: "0x" + hex.EncodeToString(input),
	}, nil
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case *big.Int:
		return v.String()
	case []*big.Int:
		s := "["
		for i, n := range v {
			if i > 0 {
				s += ","
			}
			s += n.String()
		}
		return s + "]"
	case common.Address:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}
