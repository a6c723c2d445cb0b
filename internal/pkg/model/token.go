package model

import "github.com/ethereum/go-ethereum/common"

type Token struct {
	Id       uint64 `json:"id"`
	ImageUrl string `json:"imageUrl"`
}

type Approval struct {
	Owner           common.Address `json:"owner"`
	Operator        string         `json:"operator"`
	OperatorAddress common.Address `json:"operatorAddress"`
	Approved        bool           `json:"approved"`
	Reference       string         `json:"reference,omitempty"`
}
